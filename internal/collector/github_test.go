package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v55/github"

	apperrors "github.com/devrewind/github-rewind/internal/errors"
)

// newTestCollector points a collector at a fake GitHub API server
func newTestCollector(t *testing.T, serverURL string, authed bool) *githubCollector {
	t.Helper()
	client := github.NewClient(nil)
	base, err := url.Parse(serverURL + "/")
	if err != nil {
		t.Fatalf("parsing server URL: %v", err)
	}
	client.BaseURL = base
	return &githubCollector{
		rest:    client,
		hasAuth: authed,
		logger:  log.New(io.Discard),
	}
}

func TestGetUserNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}))
	defer server.Close()

	c := newTestCollector(t, server.URL, false)
	_, err := c.getUser(context.Background(), "ghost")
	if !apperrors.IsUserNotFound(err) {
		t.Fatalf("getUser() error = %v, want USER_NOT_FOUND", err)
	}
}

func TestGetUserUnauthenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "Bad credentials"}`)
	}))
	defer server.Close()

	c := newTestCollector(t, server.URL, true)
	_, err := c.getUser(context.Background(), "octocat")
	if !apperrors.IsUnauthenticated(err) {
		t.Fatalf("getUser() error = %v, want UNAUTHENTICATED", err)
	}
}

func TestGetUserRateLimited(t *testing.T) {
	reset := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	}))
	defer server.Close()

	c := newTestCollector(t, server.URL, false)
	_, err := c.getUser(context.Background(), "octocat")
	if !apperrors.IsRateLimited(err) {
		t.Fatalf("getUser() error = %v, want RATE_LIMITED", err)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("getUser() error is not an AppError: %v", err)
	}
	if !appErr.ResetAt.Equal(reset) {
		t.Errorf("ResetAt = %v, want %v", appErr.ResetAt, reset)
	}
}

func TestClassifyForbiddenWithoutQuotaHeaders(t *testing.T) {
	reset := time.Unix(1767225600, 0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "42")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "Forbidden"}`)
	}))
	defer server.Close()

	c := newTestCollector(t, server.URL, true)
	_, err := c.searchCount(context.Background(), "author:octocat is:pr")
	if !apperrors.IsRateLimited(err) {
		t.Fatalf("searchCount() error = %v, want RATE_LIMITED", err)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("searchCount() error is not an AppError: %v", err)
	}
	if !appErr.ResetAt.Equal(reset) {
		t.Errorf("ResetAt = %v, want %v", appErr.ResetAt, reset)
	}
}

func TestClassifyUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message": "server error"}`)
	}))
	defer server.Close()

	c := newTestCollector(t, server.URL, false)
	_, err := c.getUser(context.Background(), "octocat")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("getUser() error is not an AppError: %v", err)
	}
	if appErr.Code != apperrors.ErrCodeUpstream {
		t.Errorf("Code = %s, want %s", appErr.Code, apperrors.ErrCodeUpstream)
	}
}

func TestClassifyPassesContextCancellation(t *testing.T) {
	err := classify(fmt.Errorf("wrapped: %w", context.Canceled), "anything")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("classify() = %v, want context.Canceled to pass through", err)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		t.Errorf("cancellation was wrapped into an AppError: %v", appErr)
	}
}

func TestResolveViewerUnauthenticated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer server.Close()

	c := newTestCollector(t, server.URL, false)
	viewer, err := c.resolveViewer(context.Background())
	if err != nil {
		t.Fatalf("resolveViewer() error: %v", err)
	}
	if viewer != "" {
		t.Errorf("resolveViewer() = %q, want empty login", viewer)
	}
}

func TestContributionsOfMatchesLoginCaseInsensitively(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/hello/contributors" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `[
			{"login": "Someone", "contributions": 500},
			{"login": "OctoCat", "contributions": 42}
		]`)
	}))
	defer server.Close()

	c := newTestCollector(t, server.URL, true)
	n, err := c.contributionsOf(context.Background(), "octocat", "hello", "octocat")
	if err != nil {
		t.Fatalf("contributionsOf() error: %v", err)
	}
	if n != 42 {
		t.Errorf("contributionsOf() = %d, want 42", n)
	}
}

func TestContributionsOfAbsentLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"login": "someone-else", "contributions": 3}]`)
	}))
	defer server.Close()

	c := newTestCollector(t, server.URL, true)
	n, err := c.contributionsOf(context.Background(), "octocat", "hello", "octocat")
	if err != nil {
		t.Fatalf("contributionsOf() error: %v", err)
	}
	if n != 0 {
		t.Errorf("contributionsOf() = %d, want 0", n)
	}
}

func TestSearchCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "author:octocat is:pr created:2024-01-01..2024-12-31" {
			t.Errorf("query = %q", got)
		}
		fmt.Fprint(w, `{"total_count": 7, "incomplete_results": false, "items": []}`)
	}))
	defer server.Close()

	c := newTestCollector(t, server.URL, true)
	n, err := c.searchCount(context.Background(), "author:octocat is:pr created:2024-01-01..2024-12-31")
	if err != nil {
		t.Fatalf("searchCount() error: %v", err)
	}
	if n != 7 {
		t.Errorf("searchCount() = %d, want 7", n)
	}
}

func TestCommitMessagesOfKeepsFirstLineOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"commit": {"message": "fix: handle empty input\n\nLong explanation here.", "author": {"date": "2024-03-01T10:00:00Z"}}},
			{"commit": {"message": "single line", "author": {"date": "2024-03-02T10:00:00Z"}}}
		]`)
	}))
	defer server.Close()

	c := newTestCollector(t, server.URL, true)
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)
	sampled, err := c.commitMessagesOf(context.Background(), "octocat", "hello", "octocat", since, until)
	if err != nil {
		t.Fatalf("commitMessagesOf() error: %v", err)
	}
	if len(sampled) != 2 {
		t.Fatalf("got %d commits, want 2", len(sampled))
	}
	if sampled[0].message != "fix: handle empty input" {
		t.Errorf("message = %q, want first line only", sampled[0].message)
	}
}
