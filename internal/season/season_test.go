package season

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFromDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want int
	}{
		{"november starts next season", date(2023, time.November, 1), 2024},
		{"december belongs to next season", date(2023, time.December, 25), 2024},
		{"january stays in current season", date(2024, time.January, 15), 2024},
		{"march madness", date(2024, time.March, 20), 2024},
		{"april championship", date(2024, time.April, 8), 2024},
		{"october is prior season", date(2023, time.October, 31), 2023},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromDate(tt.in))
		})
	}
}

func TestRatingsSeasonFor(t *testing.T) {
	// A game on 2024-01-15 is in season 2024 and must be predicted with
	// season-2023 ratings.
	gameDate := date(2024, time.January, 15)
	assert.Equal(t, 2024, FromDate(gameDate))
	assert.Equal(t, 2023, RatingsSeasonFor(gameDate))

	// Early-season game in November of the same campaign.
	assert.Equal(t, 2023, RatingsSeasonFor(date(2023, time.November, 10)))
}

func TestRange(t *testing.T) {
	seasons, err := Range(2021, 2024)
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2022, 2023, 2024}, seasons)

	_, err = Range(2024, 2021)
	assert.Error(t, err)
}

func TestSorted(t *testing.T) {
	assert.Equal(t, []int{2021, 2022, 2024}, Sorted([]int{2024, 2021, 2022, 2021}))
}
