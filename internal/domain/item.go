package domain

import "time"

// CaseItem is a tradeable item with its recent price change.
// Prices are integer minor-currency units (cents).
type CaseItem struct {
	ItemID          int64     `json:"item_id"`
	Name            string    `json:"name"`
	IconURL         string    `json:"icon_url"`
	OldSellPrice    int64     `json:"old_sell_price"`
	LatestSellPrice int64     `json:"latest_sell_price"`
	ChangePct       float64   `json:"change_pct"`
	Sparkline       []float64 `json:"sparkline,omitempty"`
}

// IsGainer reports whether the item's change is non-negative.
func (c *CaseItem) IsGainer() bool {
	return c.ChangePct >= 0
}

// SearchPage is one page of price-change search results.
type SearchPage struct {
	Items []CaseItem `json:"items"`
	Total int        `json:"total"`
}

// ChartDataPoint is a single sample of a price series. ChangePct is
// relative to the first point of the series.
type ChartDataPoint struct {
	Timestamp string  `json:"timestamp"`
	Price     int64   `json:"price"`
	ChangePct float64 `json:"change_pct"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time parses Timestamp. The API is not strict about the layout.
func (p ChartDataPoint) Time() (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, p.Timestamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PriceStat is the high/low range of a named interval.
type PriceStat struct {
	Interval  string `json:"interval"`
	Label     string `json:"label"`
	HighPrice int64  `json:"high_price"`
	LowPrice  int64  `json:"low_price"`
}
