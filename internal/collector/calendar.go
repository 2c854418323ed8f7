package collector

import (
	"sort"
	"time"
)

// ContributionDay is one calendar day with its contribution count. Date
// carries no meaningful time-of-day component.
type ContributionDay struct {
	Date  time.Time
	Count int
}

// TotalContributions sums all day counts in the calendar
func TotalContributions(days []ContributionDay) int {
	total := 0
	for _, day := range days {
		if day.Count > 0 {
			total += day.Count
		}
	}
	return total
}

// LongestStreak returns the longest run of consecutive calendar days with at
// least one contribution. Consecutiveness is decided on decomposed
// year/month/day fields via AddDate, never on epoch deltas: a DST shift
// makes apparent day gaps drift off 24h, and February needs leap handling.
func LongestStreak(days []ContributionDay) int {
	seen := make(map[time.Time]struct{}, len(days))
	var dates []time.Time
	for _, day := range days {
		if day.Count <= 0 {
			continue
		}
		d := time.Date(day.Date.Year(), day.Date.Month(), day.Date.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	if len(dates) == 0 {
		return 0
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	longest, current := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].AddDate(0, 0, 1).Equal(dates[i]) {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}
