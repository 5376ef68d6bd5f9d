package view

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	minorUnitsPerMajor = 100

	genericErrorMessage = "Something went wrong"
)

var hundred = decimal.NewFromInt(minorUnitsPerMajor)

// MajorUnits converts integer minor units (cents) to major units.
func MajorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}

// FormatPrice renders minor units as "$12.34".
func FormatPrice(minor int64) string {
	return FormatMajor(MajorUnits(minor))
}

func FormatMajor(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// FormatPercent renders a percent with two decimals and no sign.
func FormatPercent(pct float64) string {
	return decimal.NewFromFloat(pct).Abs().StringFixed(2) + "%"
}

// FormatSignedPercent prefixes non-negative values with "+".
func FormatSignedPercent(pct float64) string {
	d := decimal.NewFromFloat(pct)
	if d.IsNegative() {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}

// ErrorMessage is the text shown in an inline error panel.
func ErrorMessage(err error) string {
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return genericErrorMessage
	}
	return err.Error()
}
