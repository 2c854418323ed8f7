package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v55/github"

	"github.com/devrewind/github-rewind/internal/aggregator"
	"github.com/devrewind/github-rewind/internal/domain"
)

const rankingLimit = 10

// BuildSnapshot runs the whole aggregation pipeline for one (username,
// year) pair. Identity resolution, profile lookup and repository
// enumeration are required and abort on failure; every other sub-fetch
// degrades to zero/empty so one bad repository among hundreds cannot sink
// the report. No retries anywhere: rate-limit windows are long relative to
// a request, so failures surface to the caller instead.
func (c *githubCollector) BuildSnapshot(ctx context.Context, username string, year int) (*domain.YearlySnapshot, error) {
	viewer, err := c.resolveViewer(ctx)
	if err != nil {
		return nil, err
	}
	isSelf := viewer != "" && strings.EqualFold(viewer, username)

	user, err := c.getUser(ctx, username)
	if err != nil {
		return nil, err
	}

	// Only the self path may see private repositories; for anyone else the
	// public listing is used regardless of the credential's scopes.
	var ghRepos []*github.Repository
	if isSelf {
		ghRepos, err = c.listOwnRepos(ctx)
	} else {
		ghRepos, err = c.listUserRepos(ctx, username)
	}
	if err != nil {
		return nil, err
	}
	repos := toDomainRepos(ghRepos)

	// Search counts and social lists in parallel; each degrades on its own.
	dateRange := fmt.Sprintf("%d-01-01..%d-12-31", year, year)
	var (
		prCount, issueCount  int
		starred              []*github.StarredRepository
		followers, following []*github.User
	)
	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		n, err := c.searchCount(ctx, fmt.Sprintf("author:%s is:pr created:%s", username, dateRange))
		if err != nil {
			c.logger.Warn("pull request count unavailable", "err", err)
			return
		}
		prCount = n
	}()
	go func() {
		defer wg.Done()
		n, err := c.searchCount(ctx, fmt.Sprintf("author:%s is:issue created:%s", username, dateRange))
		if err != nil {
			c.logger.Warn("issue count unavailable", "err", err)
			return
		}
		issueCount = n
	}()
	go func() {
		defer wg.Done()
		list, err := c.listStarred(ctx, username)
		if err != nil {
			c.logger.Warn("starred list unavailable", "err", err)
			return
		}
		starred = list
	}()
	go func() {
		defer wg.Done()
		list, err := c.listFollowers(ctx, username)
		if err != nil {
			c.logger.Warn("follower list unavailable", "err", err)
			return
		}
		followers = list
	}()
	go func() {
		defer wg.Done()
		list, err := c.listFollowing(ctx, username)
		if err != nil {
			c.logger.Warn("following list unavailable", "err", err)
			return
		}
		following = list
	}()
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Per-repository enrichment over original work only
	nonForks := make([]*domain.Repository, 0, len(repos))
	byName := make(map[string]*domain.Repository, len(repos))
	for _, repo := range repos {
		byName[repo.Name] = repo
		if !repo.IsFork {
			nonForks = append(nonForks, repo)
		}
	}
	commitCounts := c.commitCounts(ctx, username, nonForks)
	tally := c.languageTally(ctx, nonForks)

	// The calendar is authoritative for the headline commit total and the
	// streak; the per-repo breakdown above stays informational and the two
	// are never reconciled.
	totalCommits, streak := 0, 0
	if days, err := c.fetchContributionCalendar(ctx, username, year); err != nil {
		c.logger.Warn("contribution calendar unavailable", "err", err)
	} else {
		totalCommits = TotalContributions(days)
		streak = LongestStreak(days)
	}

	rankedCommits := aggregator.SortByCommits(commitCounts)
	var topRepoByCommit *domain.RepoCommitCount
	if len(rankedCommits) > 0 {
		top := rankedCommits[0]
		topRepoByCommit = &top
	}
	messages := c.sampleCommitMessages(ctx, username, year, rankedCommits[:min(commitSampleRepos, len(rankedCommits))], byName)

	publicCount, privateCount, forkCount := 0, 0, 0
	for _, repo := range repos {
		if repo.IsPrivate {
			privateCount++
		} else {
			publicCount++
		}
		if repo.IsFork {
			forkCount++
		}
	}
	starsReceived, forksReceived := aggregator.Totals(repos)

	snapshot := &domain.YearlySnapshot{
		User: domain.UserProfile{
			Login:       user.GetLogin(),
			Name:        user.GetName(),
			AvatarURL:   user.GetAvatarURL(),
			Bio:         user.GetBio(),
			PublicRepos: user.GetPublicRepos(),
			Followers:   len(followers),
			Following:   len(following),
			CreatedAt:   user.GetCreatedAt().Time,
		},
		Year: year,
		Stats: domain.ActivityStats{
			Commits:            totalCommits,
			PullRequests:       prCount,
			Issues:             issueCount,
			Repos:              len(repos),
			PublicRepos:        publicCount,
			PrivateRepos:       privateCount,
			ForkedRepos:        forkCount,
			StarsGiven:         len(starred),
			TotalStarsReceived: starsReceived,
			TotalForksReceived: forksReceived,
			LongestStreak:      streak,
		},
		Languages:       aggregator.LanguageShares(tally),
		TopReposByStars: aggregator.TopByStars(repos, rankingLimit),
		TopReposByForks: aggregator.TopByForks(repos, rankingLimit),
		TopRepoByCommit: topRepoByCommit,
		RepoCommits:     rankedCommits,
		RecentlyUpdated: aggregator.RecentlyUpdated(repos, year, rankingLimit),
		Graveyard:       aggregator.Graveyard(repos, year, rankingLimit),
		CommitMessages:  messages,
		StarredSample:   starredSample(starred, rankingLimit),
		Social: domain.SocialStats{
			Followers:   len(followers),
			Following:   len(following),
			FollowRatio: aggregator.FollowRatio(len(followers), len(following)),
		},
		GeneratedAt: time.Now().UTC(),
	}
	return snapshot, nil
}

func toDomainRepos(ghRepos []*github.Repository) []*domain.Repository {
	repos := make([]*domain.Repository, 0, len(ghRepos))
	for _, repo := range ghRepos {
		repos = append(repos, &domain.Repository{
			Name:        repo.GetName(),
			FullName:    repo.GetFullName(),
			Owner:       repo.GetOwner().GetLogin(),
			Description: repo.GetDescription(),
			URL:         repo.GetHTMLURL(),
			IsPrivate:   repo.GetPrivate(),
			IsFork:      repo.GetFork(),
			Language:    repo.GetLanguage(),
			Stars:       repo.GetStargazersCount(),
			Forks:       repo.GetForksCount(),
			CreatedAt:   repo.GetCreatedAt().Time,
			UpdatedAt:   repo.GetUpdatedAt().Time,
			PushedAt:    repo.GetPushedAt().Time,
		})
	}
	return repos
}

func starredSample(starred []*github.StarredRepository, limit int) []domain.StarredRepo {
	if len(starred) > limit {
		starred = starred[:limit]
	}
	sample := make([]domain.StarredRepo, 0, len(starred))
	for _, entry := range starred {
		repo := entry.GetRepository()
		sample = append(sample, domain.StarredRepo{
			FullName:    repo.GetFullName(),
			Description: repo.GetDescription(),
			Language:    repo.GetLanguage(),
			Stars:       repo.GetStargazersCount(),
		})
	}
	return sample
}
