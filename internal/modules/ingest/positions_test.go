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

func TestReadPositionUniverse(t *testing.T) {
	csv := `Name,Pos,Fantasy Team,$,Rost%,Unnamed: 5
Mike Trout,OF,Team A,$40,99.5%,
Mike Trout,1B,Team Z,$1,1%,
José Ramírez,3B,,$25,97%,
Prospect Guy,SS,,,3%,
`
	table, err := NewLoader(zerolog.Nop()).ReadPositionUniverse(strings.NewReader(csv), "hitter_positions.csv")
	require.NoError(t, err)

	assert.Equal(t, domain.SourcePositions, table.Kind)
	require.Len(t, table.Records, 3, "duplicate names keep the first row")

	trout := table.Records[0]
	assert.Equal(t, "OF", *trout.Position)
	assert.Equal(t, "Team A", *trout.Team)
	assert.Equal(t, 40, *trout.Salary)
	assert.InDelta(t, 99.5, *trout.OwnershipPct, 1e-9)

	ramirez := table.Records[1]
	assert.Equal(t, "Jose Ramirez", ramirez.Name)
	assert.Nil(t, ramirez.Team)

	prospect := table.Records[2]
	assert.Nil(t, prospect.Salary)
	assert.InDelta(t, 3.0, *prospect.OwnershipPct, 1e-9)
}

func TestReadPositionUniverse_OptionalColumnsAbsent(t *testing.T) {
	table, err := NewLoader(zerolog.Nop()).ReadPositionUniverse(strings.NewReader("Player Name,Position\nA,C\n"), "p.csv")
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "C", *table.Records[0].Position)
	assert.Nil(t, table.Records[0].OwnershipPct)
	assert.Nil(t, table.Records[0].Team)
}

func TestReadPositionUniverse_MissingName(t *testing.T) {
	_, err := NewLoader(zerolog.Nop()).ReadPositionUniverse(strings.NewReader("Player,Pos\nA,C\n"), "pitcher_positions.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingRequiredColumn))
	assert.Contains(t, err.Error(), "pitcher_positions.csv")
}

func TestResolveFields_FirstHeaderInFileOrderWins(t *testing.T) {
	fields, err := ResolveFields("x", []string{"Name", "MLB Team", "Fantasy"}, PositionUniverseRules)
	require.NoError(t, err)
	assert.Equal(t, 1, fields[FieldTeam])
	assert.NotContains(t, fields, FieldOwnership)
}

func TestResolveFields_ExactCandidateOrderWins(t *testing.T) {
	fields, err := ResolveFields("x", []string{"player", "name", "cost", "price"}, AuctionExportRules)
	require.NoError(t, err)
	assert.Equal(t, 1, fields[FieldName])
	assert.Equal(t, 3, fields[FieldPrice])
}
