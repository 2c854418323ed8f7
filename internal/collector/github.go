package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v55/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	apperrors "github.com/devrewind/github-rewind/internal/errors"
)

// Per-endpoint page ceilings. Repositories carry the report; the social
// lists are lower-priority signals and get tighter bounds.
const (
	pageSize = 100

	maxRepoPages      = 10
	maxStarredPages   = 3
	maxFollowerPages  = 5
	maxFollowingPages = 5

	commitBatchSize   = 10
	languageBatchSize = 20

	commitSampleRepos    = 5
	commitSamplePageSize = 20
	commitSamplePerRepo  = 10
)

// githubCollector implements Collector against the GitHub REST and GraphQL APIs
type githubCollector struct {
	rest    *github.Client
	gql     *githubv4.Client
	hasAuth bool
	pacer   *Pacer
	logger  *log.Logger
}

// Option configures a collector
type Option func(*githubCollector)

// WithLogger sets the logger used for rate-limit telemetry and degradation warnings
func WithLogger(logger *log.Logger) Option {
	return func(c *githubCollector) { c.logger = logger }
}

// WithPacer enables request pacing keyed to the observed remaining quota
func WithPacer(p *Pacer) Option {
	return func(c *githubCollector) { c.pacer = p }
}

// NewGitHubCollector creates a collector bound to one credential. An empty
// token means unauthenticated access: public data only, a 60 req/h primary
// limit, and no contribution calendar (GraphQL requires auth).
func NewGitHubCollector(token string, opts ...Option) Collector {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	c := &githubCollector{
		rest:    github.NewClient(httpClient),
		hasAuth: token != "",
		logger:  log.Default(),
	}
	if token != "" {
		c.gql = githubv4.NewClient(httpClient)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// before gates an outgoing request on the pacer, when one is configured
func (c *githubCollector) before(ctx context.Context) error {
	if c.pacer == nil {
		return nil
	}
	return c.pacer.Wait(ctx)
}

// observeRate logs remaining/reset from every REST response and feeds the
// pacer. Telemetry only; nothing here throttles by itself.
func (c *githubCollector) observeRate(resp *github.Response) {
	if resp == nil {
		return
	}
	c.logger.Debug("github rate limit",
		"remaining", resp.Rate.Remaining,
		"reset", resp.Rate.Reset.Time.Format(time.RFC3339))
	if c.pacer != nil {
		c.pacer.Update(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}

// classify maps a go-github error to the typed taxonomy at the point where
// the HTTP status is still known. resource names what was being fetched and
// only feeds not-found messages.
func classify(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return apperrors.NewRateLimitedError(rateErr.Rate.Reset.Time)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		resetAt := time.Time{}
		if abuseErr.RetryAfter != nil {
			resetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return apperrors.NewRateLimitedError(resetAt)
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch status := ghErr.Response.StatusCode; {
		case status == http.StatusUnauthorized:
			return apperrors.NewUnauthenticatedError("GitHub rejected the credential; it may be expired or revoked")
		case status == http.StatusForbidden || status == http.StatusTooManyRequests:
			return apperrors.NewRateLimitedError(resetFromHeader(ghErr.Response))
		case status == http.StatusNotFound:
			return apperrors.NewNotFoundError(resource)
		case status >= 500:
			return apperrors.NewUpstreamError(fmt.Sprintf("GitHub returned %d fetching %s", status, resource), err)
		}
	}

	return apperrors.NewUpstreamError(fmt.Sprintf("fetching %s", resource), err)
}

// resetFromHeader parses x-ratelimit-reset (Unix seconds) from a response
func resetFromHeader(resp *http.Response) time.Time {
	raw := resp.Header.Get("X-RateLimit-Reset")
	if raw == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

// resolveViewer returns the authenticated login, or "" when unauthenticated
func (c *githubCollector) resolveViewer(ctx context.Context) (string, error) {
	if !c.hasAuth {
		return "", nil
	}
	if err := c.before(ctx); err != nil {
		return "", err
	}
	viewer, resp, err := c.rest.Users.Get(ctx, "")
	c.observeRate(resp)
	if err != nil {
		return "", classify(err, "authenticated user")
	}
	return viewer.GetLogin(), nil
}

// getUser fetches the subject's profile. A 404 here is the canonical
// unknown-user signal and is translated accordingly.
func (c *githubCollector) getUser(ctx context.Context, login string) (*github.User, error) {
	if err := c.before(ctx); err != nil {
		return nil, err
	}
	user, resp, err := c.rest.Users.Get(ctx, login)
	c.observeRate(resp)
	if err != nil {
		err = classify(err, fmt.Sprintf("user %s", login))
		if apperrors.IsUnauthenticated(err) || apperrors.IsRateLimited(err) {
			return nil, err
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeNotFound {
			return nil, apperrors.NewUserNotFoundError(login)
		}
		return nil, err
	}
	return user, nil
}

// listOwnRepos enumerates every repository owned by the authenticated user,
// private included. Only valid when the subject is the caller.
func (c *githubCollector) listOwnRepos(ctx context.Context) ([]*github.Repository, error) {
	repos, err := collectPages(ctx, maxRepoPages, func(ctx context.Context, page int) ([]*github.Repository, *github.Response, error) {
		if err := c.before(ctx); err != nil {
			return nil, nil, err
		}
		opts := &github.RepositoryListOptions{
			Visibility:  "all",
			Affiliation: "owner",
			ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
		}
		repos, resp, err := c.rest.Repositories.List(ctx, "", opts)
		c.observeRate(resp)
		return repos, resp, err
	})
	if err != nil {
		return nil, classify(err, "own repositories")
	}
	return repos, nil
}

// listUserRepos enumerates another user's repositories via the public
// listing. GitHub never exposes third-party private repositories here,
// whatever the credential's scopes.
func (c *githubCollector) listUserRepos(ctx context.Context, login string) ([]*github.Repository, error) {
	repos, err := collectPages(ctx, maxRepoPages, func(ctx context.Context, page int) ([]*github.Repository, *github.Response, error) {
		if err := c.before(ctx); err != nil {
			return nil, nil, err
		}
		opts := &github.RepositoryListOptions{
			Type:        "owner",
			ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
		}
		repos, resp, err := c.rest.Repositories.List(ctx, login, opts)
		c.observeRate(resp)
		return repos, resp, err
	})
	if err != nil {
		err = classify(err, fmt.Sprintf("repositories of %s", login))
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeNotFound {
			return nil, apperrors.NewUserNotFoundError(login)
		}
		return nil, err
	}
	return repos, nil
}

// searchCount returns the total hit count for a search query without
// fetching result pages
func (c *githubCollector) searchCount(ctx context.Context, query string) (int, error) {
	if err := c.before(ctx); err != nil {
		return 0, err
	}
	result, resp, err := c.rest.Search.Issues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	c.observeRate(resp)
	if err != nil {
		return 0, classify(err, "search results")
	}
	return result.GetTotal(), nil
}

func (c *githubCollector) listStarred(ctx context.Context, login string) ([]*github.StarredRepository, error) {
	starred, err := collectPages(ctx, maxStarredPages, func(ctx context.Context, page int) ([]*github.StarredRepository, *github.Response, error) {
		if err := c.before(ctx); err != nil {
			return nil, nil, err
		}
		opts := &github.ActivityListStarredOptions{
			ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
		}
		starred, resp, err := c.rest.Activity.ListStarred(ctx, login, opts)
		c.observeRate(resp)
		return starred, resp, err
	})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("starred repositories of %s", login))
	}
	return starred, nil
}

func (c *githubCollector) listFollowers(ctx context.Context, login string) ([]*github.User, error) {
	users, err := collectPages(ctx, maxFollowerPages, func(ctx context.Context, page int) ([]*github.User, *github.Response, error) {
		if err := c.before(ctx); err != nil {
			return nil, nil, err
		}
		users, resp, err := c.rest.Users.ListFollowers(ctx, login, &github.ListOptions{Page: page, PerPage: pageSize})
		c.observeRate(resp)
		return users, resp, err
	})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("followers of %s", login))
	}
	return users, nil
}

func (c *githubCollector) listFollowing(ctx context.Context, login string) ([]*github.User, error) {
	users, err := collectPages(ctx, maxFollowingPages, func(ctx context.Context, page int) ([]*github.User, *github.Response, error) {
		if err := c.before(ctx); err != nil {
			return nil, nil, err
		}
		users, resp, err := c.rest.Users.ListFollowing(ctx, login, &github.ListOptions{Page: page, PerPage: pageSize})
		c.observeRate(resp)
		return users, resp, err
	})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("users followed by %s", login))
	}
	return users, nil
}

// contributionsOf reads the subject's commit count in one repository from
// its contributors listing. The listing is sorted by contribution count, so
// a single page covers everything but the most crowded repositories.
func (c *githubCollector) contributionsOf(ctx context.Context, owner, repo, login string) (int, error) {
	if err := c.before(ctx); err != nil {
		return 0, err
	}
	contributors, resp, err := c.rest.Repositories.ListContributors(ctx, owner, repo, &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	})
	c.observeRate(resp)
	if err != nil {
		return 0, classify(err, fmt.Sprintf("contributors of %s/%s", owner, repo))
	}
	for _, contrib := range contributors {
		if strings.EqualFold(contrib.GetLogin(), login) {
			return contrib.GetContributions(), nil
		}
	}
	return 0, nil
}

// languagesOf returns the language -> byte count map for one repository
func (c *githubCollector) languagesOf(ctx context.Context, owner, repo string) (map[string]int, error) {
	if err := c.before(ctx); err != nil {
		return nil, err
	}
	langs, resp, err := c.rest.Repositories.ListLanguages(ctx, owner, repo)
	c.observeRate(resp)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("languages of %s/%s", owner, repo))
	}
	return langs, nil
}

// commitMessagesOf samples the subject's commit messages in one repository
// within the year, first lines only
func (c *githubCollector) commitMessagesOf(ctx context.Context, owner, repo, login string, since, until time.Time) ([]sampledCommit, error) {
	if err := c.before(ctx); err != nil {
		return nil, err
	}
	commits, resp, err := c.rest.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
		Author:      login,
		Since:       since,
		Until:       until,
		ListOptions: github.ListOptions{PerPage: commitSamplePageSize},
	})
	c.observeRate(resp)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("commits of %s/%s", owner, repo))
	}

	var sampled []sampledCommit
	for _, commit := range commits {
		if len(sampled) >= commitSamplePerRepo {
			break
		}
		message := commit.GetCommit().GetMessage()
		if idx := strings.IndexByte(message, '\n'); idx >= 0 {
			message = message[:idx]
		}
		sampled = append(sampled, sampledCommit{
			message: message,
			date:    commit.GetCommit().GetAuthor().GetDate().Time,
		})
	}
	return sampled, nil
}

type sampledCommit struct {
	message string
	date    time.Time
}
