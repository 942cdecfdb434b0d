package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"$12", intPtr(12)},
		{" $ 7 ", intPtr(7)},
		{"40", intPtr(40)},
		{"12.0", intPtr(12)},
		{"12.5", nil},
		{"", nil},
		{"$", nil},
		{"n/a", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCurrency(tt.in))
		})
	}
}

func TestParseAuctionPrice_Truncates(t *testing.T) {
	assert.Equal(t, intPtr(12), ParseAuctionPrice("12.9"))
	assert.Equal(t, intPtr(5), ParseAuctionPrice("$5"))
	assert.Nil(t, ParseAuctionPrice("free"))
	assert.Nil(t, ParseAuctionPrice(""))
}

func TestParsePercentage(t *testing.T) {
	v := ParsePercentage("12.5%")
	require.NotNil(t, v)
	assert.InDelta(t, 12.5, *v, 1e-9)

	v = ParsePercentage(" 3 ")
	require.NotNil(t, v)
	assert.InDelta(t, 3.0, *v, 1e-9)

	assert.Nil(t, ParsePercentage("%"))
	assert.Nil(t, ParsePercentage("high"))
}

func TestParseNumber_RejectsNonFinite(t *testing.T) {
	assert.Nil(t, ParseNumber("NaN"))
	assert.Nil(t, ParseNumber("Inf"))
	assert.Nil(t, ParseNumber("LAA"))

	v := ParseNumber("-0.25")
	require.NotNil(t, v)
	assert.InDelta(t, -0.25, *v, 1e-9)
}

func intPtr(v int) *int {
	return &v
}
