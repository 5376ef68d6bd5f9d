package view

import (
	"github.com/shopspring/decimal"
	"github.com/vitos/case_index/internal/domain"
)

const tooltipDateLayout = "Jan 2, 2006"

// ChartPoint is an API sample with its price in major units.
type ChartPoint struct {
	domain.ChartDataPoint
	DisplayPrice decimal.Decimal
}

// DateLabel is the tooltip date, or the raw timestamp if it does not parse.
func (p ChartPoint) DateLabel() string {
	if t, ok := p.Time(); ok {
		return t.Format(tooltipDateLayout)
	}
	return p.Timestamp
}

type Chart struct {
	Points        []ChartPoint
	ChangeValue   decimal.Decimal
	ChangePercent decimal.Decimal
}

// NewChart converts a price series for display and computes the net change
// from the first to the last point.
func NewChart(data []domain.ChartDataPoint) *Chart {
	c := &Chart{
		Points:        make([]ChartPoint, len(data)),
		ChangeValue:   decimal.Zero,
		ChangePercent: decimal.Zero,
	}
	for i, p := range data {
		c.Points[i] = ChartPoint{ChartDataPoint: p, DisplayPrice: MajorUnits(p.Price)}
	}

	if len(c.Points) < 2 {
		return c
	}
	first := c.Points[0].DisplayPrice
	last := c.Points[len(c.Points)-1].DisplayPrice
	c.ChangeValue = last.Sub(first)
	if !first.IsZero() {
		c.ChangePercent = c.ChangeValue.Div(first).Mul(hundred)
	}
	return c
}

func (c *Chart) Empty() bool {
	return len(c.Points) == 0
}

func (c *Chart) IsPositive() bool {
	return !c.ChangePercent.IsNegative()
}

// StrokeColor follows the direction of the net change.
func (c *Chart) StrokeColor() string {
	if c.IsPositive() {
		return "#22c55e"
	}
	return "#ef4444"
}

func (c *Chart) ChangePercentLabel() string {
	sign := ""
	if c.IsPositive() {
		sign = "+"
	}
	return sign + c.ChangePercent.StringFixed(2) + "%"
}

// HoverAt returns the index of the point under the pointer fraction f.
func (c *Chart) HoverAt(f float64) (int, bool) {
	if c.Empty() {
		return 0, false
	}
	return NearestIndex(f, len(c.Points)), true
}

// CurrentPrice is the hovered point's price when hover is non-nil, otherwise
// the last point's price, or zero for an empty series.
func (c *Chart) CurrentPrice(hover *int) decimal.Decimal {
	if c.Empty() {
		return decimal.Zero
	}
	if hover != nil && *hover >= 0 && *hover < len(c.Points) {
		return c.Points[*hover].DisplayPrice
	}
	return c.Points[len(c.Points)-1].DisplayPrice
}

// Sparkline renders the series into the compact plot box.
func (c *Chart) Sparkline() (*Sparkline, bool) {
	samples := make([]float64, len(c.Points))
	for i, p := range c.Points {
		samples[i] = p.DisplayPrice.InexactFloat64()
	}
	return NewSparkline(samples)
}
