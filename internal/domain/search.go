package domain

import "fmt"

type SortOption string

const (
	SortGainers SortOption = "gainers"
	SortLosers  SortOption = "losers"
)

// ParseSortOption falls back to gainers for anything unrecognised.
func ParseSortOption(s string) SortOption {
	if SortOption(s) == SortLosers {
		return SortLosers
	}
	return SortGainers
}

func (s SortOption) Label() string {
	if s == SortLosers {
		return "Top Losers"
	}
	return "Top Gainers"
}

type ChartInterval string

const (
	Interval7D ChartInterval = "7d"
	Interval1M ChartInterval = "1m"
	Interval3M ChartInterval = "3m"
	Interval6M ChartInterval = "6m"

	DefaultChartInterval = Interval3M
)

// ChartIntervals lists the selectable chart ranges in display order.
var ChartIntervals = []ChartInterval{Interval7D, Interval1M, Interval3M, Interval6M}

func ParseChartInterval(s string) (ChartInterval, error) {
	for _, iv := range ChartIntervals {
		if string(iv) == s {
			return iv, nil
		}
	}
	return "", fmt.Errorf("unknown chart interval %q", s)
}

func (c ChartInterval) Label() string {
	switch c {
	case Interval7D:
		return "7D"
	case Interval1M:
		return "1M"
	case Interval3M:
		return "3M"
	case Interval6M:
		return "6M"
	}
	return string(c)
}

// SearchParams is a single search interaction. Page is 1-based.
type SearchParams struct {
	Query  string     `json:"query"`
	Page   int        `json:"page"`
	SortBy SortOption `json:"sort_by"`
}
