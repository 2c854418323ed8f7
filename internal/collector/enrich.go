package collector

import (
	"context"
	"sync"
	"time"

	"github.com/devrewind/github-rewind/internal/domain"
)

// Enrichment fans out per-repository calls in fixed-size batches so burst
// concurrency stays under GitHub's secondary rate limit. Each batch writes
// into batch-local slots and the merge happens after the join, so the
// shared accumulators only ever see one writer.

// commitCounts resolves the subject's commit count in each repository from
// its contributors listing. A failed repository counts zero and is logged.
func (c *githubCollector) commitCounts(ctx context.Context, login string, repos []*domain.Repository) []domain.RepoCommitCount {
	counts := make([]domain.RepoCommitCount, 0, len(repos))

	for start := 0; start < len(repos); start += commitBatchSize {
		if ctx.Err() != nil {
			break
		}
		batch := repos[start:min(start+commitBatchSize, len(repos))]
		local := make([]int, len(batch))

		var wg sync.WaitGroup
		for i, repo := range batch {
			wg.Add(1)
			go func(i int, repo *domain.Repository) {
				defer wg.Done()
				n, err := c.contributionsOf(ctx, repo.Owner, repo.Name, login)
				if err != nil {
					c.logger.Warn("skipping commit count", "repo", repo.FullName, "err", err)
					return
				}
				local[i] = n
			}(i, repo)
		}
		wg.Wait()

		for i, repo := range batch {
			counts = append(counts, domain.RepoCommitCount{
				Name:     repo.Name,
				Commits:  local[i],
				Language: repo.Language,
			})
		}
	}
	return counts
}

// languageTally accumulates language byte counts across repositories.
// Failed repositories are skipped.
func (c *githubCollector) languageTally(ctx context.Context, repos []*domain.Repository) map[string]int64 {
	tally := make(map[string]int64)

	for start := 0; start < len(repos); start += languageBatchSize {
		if ctx.Err() != nil {
			break
		}
		batch := repos[start:min(start+languageBatchSize, len(repos))]
		local := make([]map[string]int, len(batch))

		var wg sync.WaitGroup
		for i, repo := range batch {
			wg.Add(1)
			go func(i int, repo *domain.Repository) {
				defer wg.Done()
				langs, err := c.languagesOf(ctx, repo.Owner, repo.Name)
				if err != nil {
					c.logger.Warn("skipping languages", "repo", repo.FullName, "err", err)
					return
				}
				local[i] = langs
			}(i, repo)
		}
		wg.Wait()

		for _, langs := range local {
			for lang, bytes := range langs {
				tally[lang] += int64(bytes)
			}
		}
	}
	return tally
}

// sampleCommitMessages collects up to ten first-line commit messages from
// each of the subject's busiest repositories within the year
func (c *githubCollector) sampleCommitMessages(ctx context.Context, login string, year int, topRepos []domain.RepoCommitCount, byName map[string]*domain.Repository) []domain.CommitMessage {
	since := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC)

	var messages []domain.CommitMessage
	for _, entry := range topRepos {
		repo, ok := byName[entry.Name]
		if !ok {
			continue
		}
		sampled, err := c.commitMessagesOf(ctx, repo.Owner, repo.Name, login, since, until)
		if err != nil {
			c.logger.Warn("skipping commit messages", "repo", repo.FullName, "err", err)
			continue
		}
		for _, commit := range sampled {
			messages = append(messages, domain.CommitMessage{
				Repo:    repo.Name,
				Message: commit.message,
				Date:    commit.date,
			})
		}
	}
	return messages
}
