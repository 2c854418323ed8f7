package collector

import (
	"context"
	"time"

	"github.com/shurcooL/githubv4"

	apperrors "github.com/devrewind/github-rewind/internal/errors"
)

// calendarQuery mirrors contributionsCollection.contributionCalendar. The
// GraphQL API is the only source with per-day granularity, and it includes
// private-repo contributions for the authenticated subject.
type calendarQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions githubv4.Int
				Weeks              []struct {
					ContributionDays []struct {
						Date              githubv4.String
						ContributionCount githubv4.Int
					}
				}
			}
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

// fetchContributionCalendar queries the subject's per-day contribution
// counts for the year. Fails with a GRAPHQL_FAILURE the caller is expected
// to swallow; contribution data is an enhancement, not a requirement.
func (c *githubCollector) fetchContributionCalendar(ctx context.Context, login string, year int) ([]ContributionDay, error) {
	if c.gql == nil {
		return nil, apperrors.NewGraphQLError("contribution calendar requires an authenticated credential", nil)
	}

	var q calendarQuery
	variables := map[string]interface{}{
		"login": githubv4.String(login),
		"from":  githubv4.DateTime{Time: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)},
		"to":    githubv4.DateTime{Time: time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC)},
	}
	if err := c.gql.Query(ctx, &q, variables); err != nil {
		return nil, apperrors.NewGraphQLError("contribution calendar query failed", err)
	}

	var days []ContributionDay
	for _, week := range q.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			date, err := time.Parse("2006-01-02", string(day.Date))
			if err != nil {
				continue
			}
			days = append(days, ContributionDay{
				Date:  date,
				Count: int(day.ContributionCount),
			})
		}
	}
	return days, nil
}
