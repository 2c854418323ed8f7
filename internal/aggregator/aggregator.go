// Package aggregator derives the ranked and percentage views of a collected
// repository set. Everything here is pure: fetched data in, report-ready
// numbers out.
package aggregator

import (
	"math"
	"sort"

	"github.com/devrewind/github-rewind/internal/domain"
)

// Totals sums stars and forks received over non-fork repositories only. A
// fork's counters belong to the upstream project, not the subject.
func Totals(repos []*domain.Repository) (stars, forks int) {
	for _, repo := range repos {
		if repo.IsFork {
			continue
		}
		stars += repo.Stars
		forks += repo.Forks
	}
	return stars, forks
}

// TopByStars ranks non-fork repositories by star count, descending
func TopByStars(repos []*domain.Repository, limit int) []domain.RepoHighlight {
	return topBy(repos, limit, func(a, b *domain.Repository) bool {
		return a.Stars > b.Stars
	})
}

// TopByForks ranks non-fork repositories by fork count, descending
func TopByForks(repos []*domain.Repository, limit int) []domain.RepoHighlight {
	return topBy(repos, limit, func(a, b *domain.Repository) bool {
		return a.Forks > b.Forks
	})
}

func topBy(repos []*domain.Repository, limit int, less func(a, b *domain.Repository) bool) []domain.RepoHighlight {
	ranked := make([]*domain.Repository, 0, len(repos))
	for _, repo := range repos {
		if !repo.IsFork {
			ranked = append(ranked, repo)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	highlights := make([]domain.RepoHighlight, 0, len(ranked))
	for _, repo := range ranked {
		highlights = append(highlights, domain.RepoHighlight{
			Name:        repo.Name,
			Description: repo.Description,
			Language:    repo.Language,
			Stars:       repo.Stars,
			Forks:       repo.Forks,
			URL:         repo.URL,
		})
	}
	return highlights
}

// SortByCommits orders commit-count entries descending, dropping zeros
func SortByCommits(counts []domain.RepoCommitCount) []domain.RepoCommitCount {
	ranked := make([]domain.RepoCommitCount, 0, len(counts))
	for _, entry := range counts {
		if entry.Commits > 0 {
			ranked = append(ranked, entry)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Commits > ranked[j].Commits })
	return ranked
}

// RecentlyUpdated lists repositories last updated within the target year,
// newest first. Forks count here; pushing to a fork is still activity.
func RecentlyUpdated(repos []*domain.Repository, year, limit int) []domain.RepoActivity {
	var recent []*domain.Repository
	for _, repo := range repos {
		if repo.UpdatedAt.Year() == year {
			recent = append(recent, repo)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].UpdatedAt.After(recent[j].UpdatedAt) })
	if len(recent) > limit {
		recent = recent[:limit]
	}

	activities := make([]domain.RepoActivity, 0, len(recent))
	for _, repo := range recent {
		activities = append(activities, domain.RepoActivity{
			Name:      repo.Name,
			Language:  repo.Language,
			Timestamp: repo.UpdatedAt,
		})
	}
	return activities
}

// Graveyard lists non-fork repositories whose last push predates the target
// year. A fork the subject never touched is not something they abandoned.
func Graveyard(repos []*domain.Repository, year, limit int) []domain.RepoActivity {
	var abandoned []domain.RepoActivity
	for _, repo := range repos {
		if repo.IsFork || repo.PushedAt.IsZero() || repo.PushedAt.Year() >= year {
			continue
		}
		abandoned = append(abandoned, domain.RepoActivity{
			Name:      repo.Name,
			Language:  repo.Language,
			Timestamp: repo.PushedAt,
		})
		if len(abandoned) == limit {
			break
		}
	}
	return abandoned
}

// LanguageShares converts a byte tally into percentage shares, descending.
// Percentages are rounded to two decimals and sum to ~100 for any non-empty
// tally; an empty tally yields an empty slice.
func LanguageShares(tally map[string]int64) []domain.LanguageShare {
	var total int64
	for _, bytes := range tally {
		total += bytes
	}
	if total == 0 {
		return nil
	}

	shares := make([]domain.LanguageShare, 0, len(tally))
	for lang, bytes := range tally {
		pct := float64(bytes) / float64(total) * 100
		shares = append(shares, domain.LanguageShare{
			Name:       lang,
			Bytes:      bytes,
			Percentage: math.Round(pct*100) / 100,
		})
	}
	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].Percentage != shares[j].Percentage {
			return shares[i].Percentage > shares[j].Percentage
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}

// FollowRatio mirrors the followers/following quotient shown on the social
// slide. With nobody followed the follower count stands in for the ratio.
func FollowRatio(followers, following int) float64 {
	if following == 0 {
		return float64(followers)
	}
	return math.Round(float64(followers)/float64(following)*100) / 100
}
