package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuctionExport(t *testing.T) {
	csv := " Player Name ,Winning Bid,Pos,Date\n" +
		"Mike Trout,$42,OF,2024-03-01\n" +
		"Gerrit Cole,12.9,SP,\n" +
		",5,C,2024-03-02\n" +
		"Nobody,tbd,,\n"

	records, err := NewLoader(zerolog.Nop()).ParseAuctionExport(strings.NewReader(csv), "auctions.csv", 2024)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Mike Trout", records[0].PlayerName)
	assert.Equal(t, 2024, records[0].Season)
	assert.Equal(t, 42, *records[0].Price)
	assert.Equal(t, "OF", *records[0].Position)
	assert.Equal(t, "2024-03-01", *records[0].AuctionDate)

	assert.Equal(t, 12, *records[1].Price)
	assert.Nil(t, records[1].AuctionDate)

	assert.Nil(t, records[2].Price)
	assert.Nil(t, records[2].Position)
}

func TestParseAuctionExport_MissingPrice(t *testing.T) {
	_, err := NewLoader(zerolog.Nop()).ParseAuctionExport(strings.NewReader("Name,Pos\nA,C\n"), "auctions.csv", 2024)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingRequiredColumn))

	var mce *domain.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, FieldPrice, mce.Field)
}
