package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shurcooL/githubv4"

	apperrors "github.com/devrewind/github-rewind/internal/errors"
)

// fakeGitHub serves a minimal slice of the REST and GraphQL APIs for one
// fixture user and records every request path it sees.
type fakeGitHub struct {
	mu     sync.Mutex
	paths  []string
	viewer string
	server *httptest.Server
}

func newFakeGitHub(t *testing.T, viewer string) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{viewer: viewer}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGitHub) record(path string) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
}

func (f *fakeGitHub) sawPath(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.paths {
		if p == path {
			return true
		}
	}
	return false
}

const fixtureRepos = `[
	{
		"name": "alpha", "full_name": "octocat/alpha",
		"owner": {"login": "octocat"},
		"private": false, "fork": false, "language": "Go",
		"stargazers_count": 100, "forks_count": 5,
		"created_at": "2022-01-01T00:00:00Z",
		"updated_at": "2024-05-01T00:00:00Z",
		"pushed_at": "2024-05-01T00:00:00Z"
	},
	{
		"name": "old-proj", "full_name": "octocat/old-proj",
		"owner": {"login": "octocat"},
		"private": false, "fork": false, "language": "Python",
		"stargazers_count": 20, "forks_count": 2,
		"created_at": "2020-01-01T00:00:00Z",
		"updated_at": "2022-06-01T00:00:00Z",
		"pushed_at": "2022-06-01T00:00:00Z"
	},
	{
		"name": "big-fork", "full_name": "octocat/big-fork",
		"owner": {"login": "octocat"},
		"private": false, "fork": true, "language": "C",
		"stargazers_count": 10000, "forks_count": 999,
		"created_at": "2023-01-01T00:00:00Z",
		"updated_at": "2024-02-01T00:00:00Z",
		"pushed_at": "2024-02-01T00:00:00Z"
	}
]`

const fixtureCalendar = `{"data": {"user": {"contributionsCollection": {"contributionCalendar": {
	"totalContributions": 6,
	"weeks": [{"contributionDays": [
		{"date": "2024-03-01", "contributionCount": 2},
		{"date": "2024-03-02", "contributionCount": 3},
		{"date": "2024-03-03", "contributionCount": 0},
		{"date": "2024-03-04", "contributionCount": 1}
	]}]
}}}}}`

func (f *fakeGitHub) handle(w http.ResponseWriter, r *http.Request) {
	f.record(r.URL.Path)
	switch {
	case r.URL.Path == "/user":
		fmt.Fprintf(w, `{"login": %q}`, f.viewer)
	case r.URL.Path == "/users/octocat":
		fmt.Fprint(w, `{"login": "octocat", "name": "The Octocat", "public_repos": 3, "created_at": "2011-01-25T18:44:36Z"}`)
	case r.URL.Path == "/user/repos", r.URL.Path == "/users/octocat/repos":
		fmt.Fprint(w, fixtureRepos)
	case r.URL.Path == "/search/issues":
		if strings.Contains(r.URL.Query().Get("q"), "is:pr") {
			fmt.Fprint(w, `{"total_count": 5, "items": []}`)
		} else {
			fmt.Fprint(w, `{"total_count": 2, "items": []}`)
		}
	case r.URL.Path == "/users/octocat/starred":
		fmt.Fprint(w, `[{"repo": {"full_name": "golang/go", "language": "Go", "stargazers_count": 120000}}]`)
	case r.URL.Path == "/users/octocat/followers":
		fmt.Fprint(w, `[{"login": "f1"}, {"login": "f2"}, {"login": "f3"}, {"login": "f4"}]`)
	case r.URL.Path == "/users/octocat/following":
		fmt.Fprint(w, `[{"login": "g1"}, {"login": "g2"}]`)
	case strings.HasSuffix(r.URL.Path, "/contributors"):
		if strings.Contains(r.URL.Path, "/alpha/") {
			fmt.Fprint(w, `[{"login": "octocat", "contributions": 80}]`)
		} else {
			fmt.Fprint(w, `[{"login": "octocat", "contributions": 12}]`)
		}
	case strings.HasSuffix(r.URL.Path, "/languages"):
		if strings.Contains(r.URL.Path, "/alpha/") {
			fmt.Fprint(w, `{"Go": 3000}`)
		} else {
			fmt.Fprint(w, `{"Python": 1000}`)
		}
	case strings.HasSuffix(r.URL.Path, "/commits"):
		fmt.Fprint(w, `[{"commit": {"message": "ship it", "author": {"date": "2024-03-01T12:00:00Z"}}}]`)
	case r.URL.Path == "/graphql":
		fmt.Fprint(w, fixtureCalendar)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}
}

func (f *fakeGitHub) collector(t *testing.T, authed, withCalendar bool) *githubCollector {
	t.Helper()
	c := newTestCollector(t, f.server.URL, authed)
	if withCalendar {
		c.gql = githubv4.NewEnterpriseClient(f.server.URL+"/graphql", http.DefaultClient)
	}
	return c
}

func TestBuildSnapshotSelf(t *testing.T) {
	fake := newFakeGitHub(t, "octocat")
	c := fake.collector(t, true, true)

	snapshot, err := c.BuildSnapshot(context.Background(), "octocat", 2024)
	if err != nil {
		t.Fatalf("BuildSnapshot() error: %v", err)
	}

	if !fake.sawPath("/user/repos") {
		t.Error("self lookup did not use the authenticated repository listing")
	}
	if fake.sawPath("/users/octocat/repos") {
		t.Error("self lookup fell back to the public repository listing")
	}

	if snapshot.User.Login != "octocat" {
		t.Errorf("User.Login = %q", snapshot.User.Login)
	}
	if snapshot.Stats.Repos != 3 {
		t.Errorf("Stats.Repos = %d, want 3", snapshot.Stats.Repos)
	}
	if snapshot.Stats.ForkedRepos != 1 {
		t.Errorf("Stats.ForkedRepos = %d, want 1", snapshot.Stats.ForkedRepos)
	}
	if snapshot.Stats.PullRequests != 5 || snapshot.Stats.Issues != 2 {
		t.Errorf("PRs/issues = %d/%d, want 5/2", snapshot.Stats.PullRequests, snapshot.Stats.Issues)
	}
	if snapshot.Stats.StarsGiven != 1 {
		t.Errorf("StarsGiven = %d, want 1", snapshot.Stats.StarsGiven)
	}
	if snapshot.Social.Followers != 4 || snapshot.Social.Following != 2 {
		t.Errorf("followers/following = %d/%d, want 4/2", snapshot.Social.Followers, snapshot.Social.Following)
	}
	if snapshot.Social.FollowRatio != 2.0 {
		t.Errorf("FollowRatio = %v, want 2.0", snapshot.Social.FollowRatio)
	}

	// Calendar-driven headline numbers
	if snapshot.Stats.Commits != 6 {
		t.Errorf("Stats.Commits = %d, want 6 from the calendar", snapshot.Stats.Commits)
	}
	if snapshot.Stats.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", snapshot.Stats.LongestStreak)
	}

	if snapshot.TopRepoByCommit == nil || snapshot.TopRepoByCommit.Name != "alpha" {
		t.Errorf("TopRepoByCommit = %+v, want alpha", snapshot.TopRepoByCommit)
	}
	if len(snapshot.Graveyard) != 1 || snapshot.Graveyard[0].Name != "old-proj" {
		t.Errorf("Graveyard = %+v, want [old-proj]", snapshot.Graveyard)
	}
	if len(snapshot.CommitMessages) == 0 || snapshot.CommitMessages[0].Message != "ship it" {
		t.Errorf("CommitMessages = %+v", snapshot.CommitMessages)
	}
}

func TestBuildSnapshotExcludesForksFromTotals(t *testing.T) {
	fake := newFakeGitHub(t, "octocat")
	c := fake.collector(t, true, true)

	snapshot, err := c.BuildSnapshot(context.Background(), "octocat", 2024)
	if err != nil {
		t.Fatalf("BuildSnapshot() error: %v", err)
	}

	// big-fork carries 10000 stars and 999 forks; none of it may count
	if snapshot.Stats.TotalStarsReceived != 120 {
		t.Errorf("TotalStarsReceived = %d, want 120", snapshot.Stats.TotalStarsReceived)
	}
	if snapshot.Stats.TotalForksReceived != 7 {
		t.Errorf("TotalForksReceived = %d, want 7", snapshot.Stats.TotalForksReceived)
	}

	if fake.sawPath("/repos/octocat/big-fork/languages") {
		t.Error("fork was enriched for languages")
	}
	if fake.sawPath("/repos/octocat/big-fork/contributors") {
		t.Error("fork was enriched for commit counts")
	}
	for _, lang := range snapshot.Languages {
		if lang.Name == "C" {
			t.Error("fork language leaked into the breakdown")
		}
	}
	for _, rc := range snapshot.RepoCommits {
		if rc.Name == "big-fork" {
			t.Error("fork appeared in the commit ranking")
		}
	}

	// Rankings still see the fork's star count is excluded
	if len(snapshot.TopReposByStars) == 0 || snapshot.TopReposByStars[0].Name != "alpha" {
		t.Errorf("TopReposByStars = %+v, want alpha first", snapshot.TopReposByStars)
	}
}

func TestBuildSnapshotThirdPartyUsesPublicListing(t *testing.T) {
	fake := newFakeGitHub(t, "someone-else")
	c := fake.collector(t, true, true)

	_, err := c.BuildSnapshot(context.Background(), "octocat", 2024)
	if err != nil {
		t.Fatalf("BuildSnapshot() error: %v", err)
	}
	if fake.sawPath("/user/repos") {
		t.Error("third-party lookup hit the authenticated repository listing")
	}
	if !fake.sawPath("/users/octocat/repos") {
		t.Error("third-party lookup skipped the public repository listing")
	}
}

func TestBuildSnapshotDegradesWithoutCalendar(t *testing.T) {
	fake := newFakeGitHub(t, "octocat")
	c := fake.collector(t, true, false) // no GraphQL client

	snapshot, err := c.BuildSnapshot(context.Background(), "octocat", 2024)
	if err != nil {
		t.Fatalf("BuildSnapshot() error: %v", err)
	}
	if snapshot == nil {
		t.Fatal("BuildSnapshot() returned nil snapshot")
	}
	if snapshot.Stats.Commits != 0 || snapshot.Stats.LongestStreak != 0 {
		t.Errorf("commits/streak = %d/%d, want 0/0 when the calendar is unavailable",
			snapshot.Stats.Commits, snapshot.Stats.LongestStreak)
	}
	// Everything else still populated
	if snapshot.Stats.Repos != 3 {
		t.Errorf("Stats.Repos = %d, want 3", snapshot.Stats.Repos)
	}
	if len(snapshot.RepoCommits) == 0 {
		t.Error("per-repo commit counts missing")
	}
}

func TestBuildSnapshotUnknownUser(t *testing.T) {
	fake := newFakeGitHub(t, "octocat")
	c := fake.collector(t, true, true)

	_, err := c.BuildSnapshot(context.Background(), "ghost", 2024)
	if !apperrors.IsUserNotFound(err) {
		t.Fatalf("BuildSnapshot() error = %v, want USER_NOT_FOUND", err)
	}
}
