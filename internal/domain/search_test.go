package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortOption(t *testing.T) {
	assert.Equal(t, SortLosers, ParseSortOption("losers"))
	assert.Equal(t, SortGainers, ParseSortOption("gainers"))
	assert.Equal(t, SortGainers, ParseSortOption(""))
	assert.Equal(t, SortGainers, ParseSortOption("LOSERS"))

	assert.Equal(t, "Top Gainers", SortGainers.Label())
	assert.Equal(t, "Top Losers", SortLosers.Label())
}

func TestParseChartInterval(t *testing.T) {
	for _, iv := range ChartIntervals {
		got, err := ParseChartInterval(string(iv))
		require.NoError(t, err)
		assert.Equal(t, iv, got)
	}

	_, err := ParseChartInterval("1y")
	assert.Error(t, err)
	assert.Equal(t, Interval3M, DefaultChartInterval)
	assert.Equal(t, "6M", Interval6M.Label())
}

func TestChartDataPoint_Time(t *testing.T) {
	tests := []struct {
		stamp string
		want  time.Time
		ok    bool
	}{
		{"2024-03-01T12:30:00Z", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"2024-03-01T12:30:00", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"2024-03-01 12:30:00", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.stamp, func(t *testing.T) {
			got, ok := ChartDataPoint{Timestamp: tt.stamp}.Time()
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestCaseItem_IsGainer(t *testing.T) {
	assert.True(t, (&CaseItem{ChangePct: 0}).IsGainer())
	assert.True(t, (&CaseItem{ChangePct: 3.2}).IsGainer())
	assert.False(t, (&CaseItem{ChangePct: -0.01}).IsGainer())
}
