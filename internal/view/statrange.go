package view

import (
	"math"

	"github.com/vitos/case_index/internal/domain"
)

type Zone string

const (
	ZoneNearHigh Zone = "near-high"
	ZoneNearLow  Zone = "near-low"
	ZoneNeutral  Zone = "neutral"
)

const (
	nearHighAbove = 70.0
	nearLowBelow  = 30.0
)

// RangePosition places the current price on a low..high bar.
type RangePosition struct {
	Percent float64
	Zone    Zone
}

// Position computes where current sits between low and high, as a percentage
// clamped to [0, 100]. A zero-width range puts the marker at the center.
func Position(current, low, high int64) RangePosition {
	cur, lo, hi := MajorUnits(current), MajorUnits(low), MajorUnits(high)

	pos := 50.0
	if span := hi.Sub(lo); span.IsPositive() {
		pos = cur.Sub(lo).Div(span).Mul(hundred).InexactFloat64()
	}

	zone := ZoneNeutral
	switch {
	case pos > nearHighAbove:
		zone = ZoneNearHigh
	case pos < nearLowBelow:
		zone = ZoneNearLow
	}

	return RangePosition{
		Percent: math.Max(0, math.Min(100, pos)),
		Zone:    zone,
	}
}

// StatCard is a PriceStat prepared for display against the current price.
type StatCard struct {
	domain.PriceStat
	Current  int64
	Position RangePosition
}

func NewStatCards(stats []domain.PriceStat, currentPrice int64) []StatCard {
	cards := make([]StatCard, 0, len(stats))
	for _, s := range stats {
		cards = append(cards, StatCard{
			PriceStat: s,
			Current:   currentPrice,
			Position:  Position(currentPrice, s.LowPrice, s.HighPrice),
		})
	}
	return cards
}
