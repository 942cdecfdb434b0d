package pricing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/modules/history"
	testingpkg "github.com/aristath/draftboard/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureNames_Union(t *testing.T) {
	assert.Equal(t, []string{
		"proj_fpts", "proj_wrc_plus", "proj_hr", "proj_sb", "proj_ops",
		"proj_ip", "proj_era", "proj_k_per_9", "is_closer",
	}, FeatureNames)
}

func TestFeatureBuilder_Pitchers(t *testing.T) {
	table := testingpkg.NewPlayerTableFixture(domain.Pitchers,
		testingpkg.FixturePlayer{Name: "Closer", Ownership: -1, Stats: map[string]float64{
			"proj_fpts": 400, "proj_ip": 60, "proj_era": 2.5, "proj_so": 80, "proj_sv": 30, "proj_hr": 5,
		}},
		testingpkg.FixturePlayer{Name: "No Innings", Ownership: -1, Stats: map[string]float64{
			"proj_fpts": 10, "proj_era": 9, "proj_so": 3, "proj_sv": 10,
		}},
	)
	b := newFeatureBuilder(table, FeatureNames)

	vec, complete := b.vector(table.Records[0])
	require.True(t, complete)
	assert.Equal(t, 400.0, vec[0])
	assert.Equal(t, 0.0, vec[2], "hitter features are zero for pitchers")
	assert.Equal(t, 60.0, vec[5])
	assert.InDelta(t, 12.0, vec[7], 1e-9)
	assert.Equal(t, 1.0, vec[8])

	vec, complete = b.vector(table.Records[1])
	assert.False(t, complete, "null innings is an incomplete row")
	assert.Equal(t, 0.0, vec[7], "K/9 is 0 without innings")
	assert.Equal(t, 0.0, vec[8], "10 saves is not a closer")
}

func TestFeatureBuilder_AbsentColumnReadsZero(t *testing.T) {
	table := testingpkg.NewPlayerTableFixture(domain.Hitters,
		testingpkg.FixturePlayer{Name: "A", Ownership: -1, Stats: map[string]float64{"proj_fpts": 500, "proj_hr": 30}},
		testingpkg.FixturePlayer{Name: "B", Ownership: -1, Stats: map[string]float64{"proj_fpts": 400}},
	)
	b := newFeatureBuilder(table, FeatureNames)

	vec, complete := b.vector(table.Records[0])
	assert.True(t, complete, "columns missing from the whole table read as 0")
	assert.Equal(t, 30.0, vec[2])

	_, complete = b.vector(table.Records[1])
	assert.False(t, complete)
}

func TestStandardScaler(t *testing.T) {
	s, err := FitScaler([][]float64{{1, 5}, {3, 5}})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 5}, s.Mean)
	assert.InDelta(t, 1.0, s.Scale[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale[1], "constant column keeps scale 1")
	assert.Equal(t, []float64{-1, 0}, s.Transform([]float64{1, 5}))
}

func TestRidge_RecoversLinearRelation(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		x1, x2 := float64(i), float64((i*7)%5)
		X = append(X, []float64{x1, x2})
		y = append(y, 3+2*x1-x2)
	}

	m, err := Ridge{Alpha: 0}.FitLinear(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, m.Coefficients[0], 1e-6)
	assert.InDelta(t, -1.0, m.Coefficients[1], 1e-6)
	assert.InDelta(t, 3.0, m.Intercept, 1e-6)
	assert.InDelta(t, 1.0, Score(m, X, y), 1e-9)

	shrunk, err := Ridge{Alpha: 100}.FitLinear(X, y)
	require.NoError(t, err)
	assert.Less(t, shrunk.Coefficients[0], m.Coefficients[0])
}

func TestRidge_InvalidInput(t *testing.T) {
	_, err := Ridge{Alpha: 1}.Fit(nil, nil)
	assert.Error(t, err)
	_, err = Ridge{Alpha: 1}.Fit([][]float64{{1}}, []float64{1, 2})
	assert.Error(t, err)
	_, err = Ridge{Alpha: -1}.Fit([][]float64{{1}}, []float64{1})
	assert.Error(t, err)
}

// trainingFixture builds a hitter table and matching auction prices
func trainingFixture(n int) (*domain.PlayerTable, []history.Match) {
	players := make([]testingpkg.FixturePlayer, n)
	for i := 0; i < n; i++ {
		players[i] = testingpkg.FixturePlayer{
			Name:      fmt.Sprintf("Hitter %d", i),
			Ownership: -1,
			Stats: map[string]float64{
				"proj_fpts":     300 + float64(i)*40,
				"proj_wrc_plus": 90 + float64(i%7)*5,
				"proj_hr":       10 + float64(i%5)*4,
				"proj_sb":       float64(i % 3),
				"proj_ops":      0.7 + float64(i%4)*0.03,
			},
		}
	}
	table := testingpkg.NewPlayerTableFixture(domain.Hitters, players...)

	matches := make([]history.Match, n)
	for i, rec := range table.Records {
		matches[i] = history.Match{Player: rec, Price: 1 + i*3, Season: 2024}
	}
	return table, matches
}

func TestTrain_DeterministicAndPersisted(t *testing.T) {
	table, matches := trainingFixture(15)
	tables := map[domain.Population]*domain.PlayerTable{domain.Hitters: table}
	byPop := map[domain.Population][]history.Match{domain.Hitters: matches}

	svc := NewService(t.TempDir(), DefaultAlpha, zerolog.Nop())
	first, art, err := svc.Train(tables, byPop)
	require.NoError(t, err)
	second, _, err := svc.Train(tables, byPop)
	require.NoError(t, err)

	assert.Equal(t, first.FeatureWeights, second.FeatureWeights)
	assert.Equal(t, first.R2, second.R2)
	assert.Equal(t, 15, first.MatchedCount)
	assert.Greater(t, first.R2, 0.5)
	assert.Greater(t, first.FeatureWeights["proj_fpts"], 0.0)
	assert.Zero(t, first.FeatureWeights["proj_ip"], "pitcher-only features carry no hitter signal")

	loaded, err := svc.LoadArtifacts()
	require.NoError(t, err)
	assert.Equal(t, art.FeatureNames, loaded.FeatureNames)
	assert.Equal(t, art.Coefficients, loaded.Coefficients)
	assert.Equal(t, art.Intercept, loaded.Intercept)
}

func TestTrain_InsufficientData(t *testing.T) {
	table, matches := trainingFixture(12)
	// Three rows lose an own-population feature
	for _, m := range matches[:3] {
		delete(m.Player.Stats, "proj_ops")
	}

	dir := t.TempDir()
	svc := NewService(dir, DefaultAlpha, zerolog.Nop())
	_, _, err := svc.Train(
		map[domain.Population]*domain.PlayerTable{domain.Hitters: table},
		map[domain.Population][]history.Match{domain.Hitters: matches},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientTrainingData))

	var ide *domain.InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, 9, ide.Count)

	_, statErr := os.Stat(filepath.Join(dir, ArtifactFile))
	assert.True(t, os.IsNotExist(statErr), "no artifacts written")

	_, err = svc.LoadArtifacts()
	assert.True(t, errors.Is(err, domain.ErrNoModel))
}

func TestPredict(t *testing.T) {
	table, matches := trainingFixture(15)
	svc := NewService(t.TempDir(), DefaultAlpha, zerolog.Nop())
	_, art, err := svc.Train(
		map[domain.Population]*domain.PlayerTable{domain.Hitters: table},
		map[domain.Population][]history.Match{domain.Hitters: matches},
	)
	require.NoError(t, err)

	extra := domain.NewPlayerRecord("No Projection")
	extra.PredictedPrice = testingpkg.IntPtr(7)
	sparse := domain.NewPlayerRecord("Sparse")
	sparse.Stats["proj_fpts"] = -5000
	table.Records = append(table.Records, extra, sparse)

	out, n := svc.Predict(table, art)
	assert.Equal(t, 16, n)

	assert.Equal(t, 7, *out.Find("No Projection").PredictedPrice, "untouched without projection")
	assert.Equal(t, 0, *out.Find("Sparse").PredictedPrice, "clipped at zero")

	top := out.Find("Hitter 14")
	bottom := out.Find("Hitter 0")
	require.NotNil(t, top.PredictedPrice)
	assert.Greater(t, *top.PredictedPrice, *bottom.PredictedPrice)
	assert.Nil(t, table.Records[0].PredictedPrice, "input untouched")
}

func TestSaveArtifacts_RejectsInconsistent(t *testing.T) {
	err := SaveArtifacts(t.TempDir(), &Artifacts{FeatureNames: []string{"a"}, Mean: []float64{1}})
	assert.Error(t, err)
}
