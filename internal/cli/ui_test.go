package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/case_index/internal/domain"
	"github.com/vitos/case_index/internal/usecase"
	"github.com/vitos/case_index/internal/view"
)

func TestRenderPager(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []string
	}{
		{"Hidden for one page", 1, 1, nil},
		{"Start", 1, 10, []string{"[1]", "2", "3", "4", "...", "10"}},
		{"Middle", 5, 10, []string{"1", "...", "4", "[5]", "6", "...", "10"}},
		{"End", 10, 10, []string{"1", "...", "7", "8", "9", "[10]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderPager(view.NewPager(tt.current, tt.total))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			fields := strings.Fields(got)
			require.Len(t, fields, len(tt.want)+2)
			assert.Equal(t, tt.want, fields[1:len(fields)-1])
		})
	}
}

func TestRenderSearch(t *testing.T) {
	page := &domain.SearchPage{
		Total: 45,
		Items: []domain.CaseItem{
			{ItemID: 1, Name: "Chroma Case", LatestSellPrice: 150, ChangePct: 50},
			{ItemID: 2, Name: "Gamma Case", LatestSellPrice: 90, ChangePct: -10},
		},
	}
	out := RenderSearch(domain.SearchParams{Query: "Case", Page: 2, SortBy: domain.SortGainers}, page, 20)

	assert.Contains(t, out, `Search: "Case"`)
	assert.Contains(t, out, "Top Gainers")
	assert.Contains(t, out, "45 results")
	assert.Contains(t, out, "Chroma Case")
	assert.Contains(t, out, "$1.50")
	assert.Contains(t, out, "+50.00%")
	assert.Contains(t, out, "-10.00%")
	assert.Contains(t, out, "[2]")
}

func TestRenderSearch_Empty(t *testing.T) {
	out := RenderSearch(domain.SearchParams{Page: 1, SortBy: domain.SortLosers}, &domain.SearchPage{}, 20)
	assert.Contains(t, out, "All Cases")
	assert.Contains(t, out, "Top Losers")
	assert.Contains(t, out, "No cases found")
	assert.NotContains(t, out, "[1]")
}

func TestRenderMovers(t *testing.T) {
	home := &usecase.HomeView{
		Gainers: usecase.Section[*domain.SearchPage]{Data: &domain.SearchPage{
			Items: []domain.CaseItem{{ItemID: 1, Name: "Chroma Case", LatestSellPrice: 150, ChangePct: 50}},
		}},
		Losers: usecase.Section[*domain.SearchPage]{Err: errors.New("upstream down")},
	}
	out := RenderMovers(home)

	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "Chroma Case")
	assert.Contains(t, out, "Failed to load data: upstream down")
}

func TestTerminalSparkline(t *testing.T) {
	line, ok := view.NewSparkline([]float64{1, 2, 3})
	require.True(t, ok)
	assert.Equal(t, "▁▅█", TerminalSparkline(line))

	flat, ok := view.NewSparkline([]float64{4, 4, 4})
	require.True(t, ok)
	assert.Equal(t, "▅▅▅", TerminalSparkline(flat))
}

func TestStatBar(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		at      int
	}{
		{"Low", 0, 0},
		{"Center", 50, 12},
		{"High", 100, statBarWidth - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := []rune(StatBar(view.RangePosition{Percent: tt.percent}))
			require.Len(t, bar, statBarWidth)
			assert.Equal(t, '●', bar[tt.at])
			assert.Equal(t, 1, strings.Count(string(bar), "●"))
		})
	}
}

func TestRenderItem(t *testing.T) {
	d := &usecase.ItemDetail{
		ItemID:   7,
		Interval: domain.Interval7D,
		Item: usecase.Section[*domain.CaseItem]{Data: &domain.CaseItem{
			ItemID: 7, Name: "Chroma Case", OldSellPrice: 100, LatestSellPrice: 150, ChangePct: 50,
		}},
		Chart: usecase.Section[[]domain.ChartDataPoint]{Data: []domain.ChartDataPoint{
			{Timestamp: "2024-03-01T00:00:00Z", Price: 100},
			{Timestamp: "2024-03-08T00:00:00Z", Price: 150},
		}},
		Stats: usecase.Section[[]domain.PriceStat]{Data: []domain.PriceStat{
			{Interval: "7d", Label: "7 Days", LowPrice: 100, HighPrice: 200},
		}},
	}
	out := RenderItem(d)

	assert.Contains(t, out, "Chroma Case")
	assert.Contains(t, out, "Current Price  $1.50")
	assert.Contains(t, out, "Previous Price $1.00")
	assert.Contains(t, out, "Price History (7D)")
	assert.Contains(t, out, "Mar 1, 2024 → Mar 8, 2024")
	assert.Contains(t, out, "$0.50")
	assert.Contains(t, out, "+50.00%")
	assert.Contains(t, out, "7 Days")
	assert.Contains(t, out, "50.0%")
}

func TestRenderItem_SectionsFailIndependently(t *testing.T) {
	d := &usecase.ItemDetail{
		ItemID:   7,
		Interval: domain.Interval3M,
		Item:     usecase.Section[*domain.CaseItem]{Err: errors.New("item lookup failed")},
		Chart:    usecase.Section[[]domain.ChartDataPoint]{Data: []domain.ChartDataPoint{}},
		Stats:    usecase.Section[[]domain.PriceStat]{Data: []domain.PriceStat{}},
	}
	out := RenderItem(d)

	assert.Contains(t, out, "Failed to load data: item lookup failed")
	assert.Contains(t, out, "No chart data available")
	assert.Contains(t, out, "No statistics available")
}
