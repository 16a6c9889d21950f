// Package season is the single authoritative mapping from calendar dates to
// NCAA season years. Every component that needs a season number must go
// through this package; divergent copies of this logic are how ratings
// leakage happens.
package season

import (
	"fmt"
	"sort"
	"time"
)

// BoundaryMonth is the month a new season begins. Season naming follows the
// NCAA convention: season 2024 == the 2023-24 campaign (Nov 2023 - Apr 2024).
const BoundaryMonth = time.November

// FromDate maps a calendar date to its NCAA season year.
func FromDate(date time.Time) int {
	if date.Month() >= BoundaryMonth {
		return date.Year() + 1
	}
	return date.Year()
}

// Current returns the season for the supplied clock time.
func Current(now time.Time) int {
	return FromDate(now)
}

// RatingsSeasonFor returns the season whose completed ratings may be used to
// predict a game on the given date. It is always the prior season; using
// same-season ratings would fold the game's own result into its inputs.
func RatingsSeasonFor(gameDate time.Time) int {
	return FromDate(gameDate) - 1
}

// Range returns the inclusive list of seasons from first through last.
func Range(first, last int) ([]int, error) {
	if first > last {
		return nil, fmt.Errorf("invalid season range %d-%d", first, last)
	}
	seasons := make([]int, 0, last-first+1)
	for s := first; s <= last; s++ {
		seasons = append(seasons, s)
	}
	return seasons, nil
}

// Sorted returns the distinct seasons present in the input, ascending.
func Sorted(seasons []int) []int {
	seen := make(map[int]struct{}, len(seasons))
	out := make([]int, 0, len(seasons))
	for _, s := range seasons {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}
