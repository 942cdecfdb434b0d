package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Cell parsers never fail: a malformed cell is recovered as nil.

// ParseCurrency parses "$12" / " 12 " into a whole-dollar amount.
// Fractional or non-numeric content yields nil.
func ParseCurrency(cell string) *int {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cell), "$"))
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return nil
	}
	v := int(d.IntPart())
	return &v
}

// ParseAuctionPrice parses a realized auction price, truncating toward zero ("12.9" → 12).
func ParseAuctionPrice(cell string) *int {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cell), "$"))
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	v := int(d.Truncate(0).IntPart())
	return &v
}

// ParsePercentage parses "12.5%" into 12.5 (0-100 scale)
func ParsePercentage(cell string) *float64 {
	return ParseNumber(strings.TrimSuffix(strings.TrimSpace(cell), "%"))
}

// ParseNumber parses a numeric cell; blanks, text, NaN and infinities yield nil
func ParseNumber(cell string) *float64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseText trims a string cell; blank yields nil
func parseText(cell string) *string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	return &s
}
