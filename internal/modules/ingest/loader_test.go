package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_CanonicalizesAndParses(t *testing.T) {
	dir := t.TempDir()
	content := "\xEF\xBB\xBF" + `#,Name,Team,Fantasy,$,HR,BB%,wRC+,Unnamed: 8
1,Mike Trout Jr.,LAA,Team A,$40,38,14.5%,170,
2,José Ramírez,CLE,,$ 25,bad,9.1%,140,
3,,NYY,Team C,$10,10,5%,100,
4,Juan Soto,NYY,Team B,n/a,35
`
	path := writeFile(t, dir, "hitters_fantasy.csv", content)

	table, err := NewLoader(zerolog.Nop()).LoadFile(path, domain.SourceFantasy)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceFantasy, table.Kind)
	// "#" and "Unnamed" are dropped; the text-only MLB team header passes through with null cells
	assert.Equal(t, []string{"Team", "hr", "bb_pct", "wrc_plus"}, table.Columns)
	require.Len(t, table.Records, 3)

	trout := table.Records[0]
	assert.Equal(t, "Mike Trout", trout.Name)
	require.NotNil(t, trout.Team)
	assert.Equal(t, "Team A", *trout.Team)
	require.NotNil(t, trout.Salary)
	assert.Equal(t, 40, *trout.Salary)
	assert.InDelta(t, 14.5, trout.Stats["bb_pct"], 1e-9)
	assert.InDelta(t, 170.0, trout.Stats["wrc_plus"], 1e-9)

	ramirez := table.Records[1]
	assert.Equal(t, "Jose Ramirez", ramirez.Name)
	assert.Nil(t, ramirez.Team)
	assert.Equal(t, 25, *ramirez.Salary)
	_, ok := ramirez.Stat("hr")
	assert.False(t, ok, "malformed cell becomes null")

	soto := table.Records[2]
	assert.Nil(t, soto.Salary)
	_, ok = soto.Stat("bb_pct")
	assert.False(t, ok, "ragged row cells are null")
	_, ok = trout.Stat("Team")
	assert.False(t, ok)
}

func TestLoadFile_KeepsUnparseableColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hitters_advanced.csv", `Name,Bats,wRC+,xwOBA
Mike Trout,R,170,
Juan Soto,L,160,
`)

	table, err := NewLoader(zerolog.Nop()).LoadFile(path, domain.SourceAdvanced)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bats", "wrc_plus", "xwOBA"}, table.Columns)
	for _, rec := range table.Records {
		_, ok := rec.Stat("Bats")
		assert.False(t, ok)
		_, ok = rec.Stat("xwOBA")
		assert.False(t, ok)
	}
}

func TestLoadFile_MissingNameColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hitters_advanced.csv", "Player,HR\nMike Trout,38\n")

	_, err := NewLoader(zerolog.Nop()).LoadFile(path, domain.SourceAdvanced)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingRequiredColumn))
	assert.Contains(t, err.Error(), "hitters_advanced.csv")
	assert.Contains(t, err.Error(), "Player, HR")
}

func TestLoadProjections_PrefixesColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "proj_hitters.csv", "Name,Team,FPTS,HR,$\nMike Trout,LAA,950.5,40,$38\n")

	table, err := NewLoader(zerolog.Nop()).LoadProjections(path)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceProjections, table.Kind)
	assert.Equal(t, []string{"proj_Team", "proj_fpts", "proj_hr", "proj_salary"}, table.Columns)
	rec := table.Records[0]
	assert.Nil(t, rec.Team)
	assert.Nil(t, rec.Salary)
	assert.True(t, rec.HasProjection())
	assert.InDelta(t, 950.5, rec.Stats[domain.ColumnProjectedPoints], 1e-9)
	assert.InDelta(t, 38.0, rec.Stats["proj_salary"], 1e-9)
}

func TestLoadFile_SpreadsheetDetectedBySignature(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "IP", "ERA"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Gerrit Cole", 200, 3.1}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.True(t, IsSpreadsheet(buf.Bytes()))

	// Extension says csv; the content is an xlsx container
	dir := t.TempDir()
	path := writeFile(t, dir, "pitchers_advanced.csv", buf.String())

	table, err := NewLoader(zerolog.Nop()).LoadFile(path, domain.SourceAdvanced)
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "Gerrit Cole", table.Records[0].Name)
	assert.InDelta(t, 200.0, table.Records[0].Stats["ip"], 1e-9)
	assert.InDelta(t, 3.1, table.Records[0].Stats["era"], 1e-9)
}

func TestReadSource_FromReader(t *testing.T) {
	table, err := NewLoader(zerolog.Nop()).ReadSource(strings.NewReader("Name,Stuff+\nA,101\n"), "upload", domain.SourceModeling)
	require.NoError(t, err)
	assert.Equal(t, []string{"stuff_plus"}, table.Columns)
}

func writeSourceSet(t *testing.T, dir string, skip string) {
	t.Helper()
	files := map[string]string{
		"hitters_fantasy.csv":      "Name,Fantasy,$,FPTS\nMike Trout,Team A,$40,900\n",
		"hitters_advanced.csv":     "Name,wRC+\nMike Trout,170\n",
		"hitters_batted_ball.csv":  "Name,Hard%\nMike Trout,45%\n",
		"pitchers_fantasy.csv":     "Name,Fantasy,$,FPTS,IP\nGerrit Cole,Team B,$30,800,200\n",
		"pitchers_advanced.csv":    "Name,ERA\nGerrit Cole,3.1\n",
		"pitchers_batted_ball.csv": "Name,EV\nGerrit Cole,88.5\n",
		"pitchers_modeling.csv":    "Name,Stuff+\nGerrit Cole,115\n",
		"proj_hitters.csv":         "Name,FPTS\nMike Trout,950\n",
	}
	for name, content := range files {
		if name == skip {
			continue
		}
		writeFile(t, dir, name, content)
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeSourceSet(t, dir, "")

	sources, err := NewLoader(zerolog.Nop()).LoadAll(dir)
	require.NoError(t, err)

	hitters := sources[domain.Hitters]
	assert.Contains(t, hitters, domain.SourceFantasy)
	assert.Contains(t, hitters, domain.SourceProjections)
	assert.NotContains(t, hitters, domain.SourcePositions)

	pitchers := sources[domain.Pitchers]
	assert.Contains(t, pitchers, domain.SourceModeling)
	assert.NotContains(t, pitchers, domain.SourceProjections)
}

func TestLoadAll_MissingRequiredFile(t *testing.T) {
	dir := t.TempDir()
	writeSourceSet(t, dir, "pitchers_modeling.csv")

	_, err := NewLoader(zerolog.Nop()).LoadAll(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "pitchers_modeling.csv")
}

func TestParseTable_EmptyInput(t *testing.T) {
	raw, err := parseTable([]byte{}, "empty")
	require.NoError(t, err)
	assert.Empty(t, raw.headers)
}
