package domain

import "time"

// UserProfile holds the subject's public profile fields
type UserProfile struct {
	Login       string    `json:"login"`
	Name        string    `json:"name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityStats holds the headline totals for the target year.
// Commits and LongestStreak come from the contribution calendar; both are
// zero when the calendar could not be fetched.
type ActivityStats struct {
	Commits            int `json:"commits"`
	PullRequests       int `json:"pull_requests"`
	Issues             int `json:"issues"`
	Repos              int `json:"repos"`
	PublicRepos        int `json:"public_repos"`
	PrivateRepos       int `json:"private_repos"`
	ForkedRepos        int `json:"forked_repos"`
	StarsGiven         int `json:"stars_given"`
	TotalStarsReceived int `json:"total_stars_received"`
	TotalForksReceived int `json:"total_forks_received"`
	LongestStreak      int `json:"longest_streak"`
}

// LanguageShare is one language's slice of the byte tally
type LanguageShare struct {
	Name       string  `json:"name"`
	Bytes      int64   `json:"bytes"`
	Percentage float64 `json:"percentage"`
}

// RepoHighlight is a ranked repository entry
type RepoHighlight struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	URL         string `json:"url,omitempty"`
}

// RepoCommitCount pairs a repository with the subject's commit count in it
type RepoCommitCount struct {
	Name     string `json:"name"`
	Commits  int    `json:"commits"`
	Language string `json:"language,omitempty"`
}

// RepoActivity is a repository with the timestamp relevant to its ranking
// (last update for recently-updated, last push for the graveyard)
type RepoActivity struct {
	Name      string    `json:"name"`
	Language  string    `json:"language,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CommitMessage is one sampled commit message (first line only)
type CommitMessage struct {
	Repo    string    `json:"repo"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}

// StarredRepo is one entry of the starred sample
type StarredRepo struct {
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Stars       int    `json:"stars"`
}

// SocialStats holds follower/following counts and their ratio
type SocialStats struct {
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`
	FollowRatio float64 `json:"follow_ratio"`
}

// YearlySnapshot is the aggregation root for one (username, year) request.
// It is immutable after construction and is the sole artifact handed to the
// slide-generation service.
type YearlySnapshot struct {
	User            UserProfile       `json:"user"`
	Year            int               `json:"year"`
	Stats           ActivityStats     `json:"stats"`
	Languages       []LanguageShare   `json:"languages"`
	TopReposByStars []RepoHighlight   `json:"top_repos_by_stars"`
	TopReposByForks []RepoHighlight   `json:"top_repos_by_forks"`
	TopRepoByCommit *RepoCommitCount  `json:"top_repo_by_commits,omitempty"`
	RepoCommits     []RepoCommitCount `json:"repo_commits,omitempty"`
	RecentlyUpdated []RepoActivity    `json:"recently_updated"`
	Graveyard       []RepoActivity    `json:"graveyard"`
	CommitMessages  []CommitMessage   `json:"commit_messages"`
	StarredSample   []StarredRepo     `json:"starred_sample"`
	Social          SocialStats       `json:"social"`
	GeneratedAt     time.Time         `json:"generated_at"`
}
