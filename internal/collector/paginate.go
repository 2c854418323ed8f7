package collector

import (
	"context"

	"github.com/google/go-github/v55/github"
)

// collectPages drives a list endpoint page by page, in order, concatenating
// results. Page N+1 is requested only after page N came back full; a short
// or empty page ends the walk, as does maxPages. Sequential on purpose: the
// stop condition needs the previous page's size.
func collectPages[T any](ctx context.Context, maxPages int, fetch func(ctx context.Context, page int) ([]T, *github.Response, error)) ([]T, error) {
	var all []T
	for page := 1; page <= maxPages; page++ {
		items, _, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < pageSize {
			break
		}
	}
	return all, nil
}
