package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/modules/history"
	"github.com/rs/zerolog"
)

// MinTrainingRows is the smallest training set the model is fitted on
const MinTrainingRows = 10

// TrainResult reports a fitted model
type TrainResult struct {
	R2             float64            `json:"r2"`
	MatchedCount   int                `json:"matched_count"`
	FeatureWeights map[string]float64 `json:"feature_weights"`
	TrainedAt      time.Time          `json:"trained_at"`
}

// Service trains the price model and predicts prices
type Service struct {
	modelDir  string
	alpha     float64
	regressor Regressor
	log       zerolog.Logger
}

// NewService creates a price service backed by ridge regression
func NewService(modelDir string, alpha float64, log zerolog.Logger) *Service {
	return &Service{
		modelDir:  modelDir,
		alpha:     alpha,
		regressor: Ridge{Alpha: alpha},
		log:       log.With().Str("component", "pricing").Logger(),
	}
}

// ModelDir returns the artifact directory
func (s *Service) ModelDir() string {
	return s.modelDir
}

// TrainingSet builds feature rows and labels for one population's matches.
// Rows with a null own-population feature are skipped and counted in dropped.
func TrainingSet(table *domain.PlayerTable, matches []history.Match) (X [][]float64, y []float64, dropped int) {
	builder := newFeatureBuilder(table, FeatureNames)
	for _, m := range matches {
		vec, complete := builder.vector(m.Player)
		if !complete {
			dropped++
			continue
		}
		X = append(X, vec)
		y = append(y, float64(m.Price))
	}
	return X, y, dropped
}

// Train fits the model on both populations' matches and saves the artifacts.
// With fewer than MinTrainingRows usable rows nothing is fitted or written.
func (s *Service) Train(tables map[domain.Population]*domain.PlayerTable, matches map[domain.Population][]history.Match) (*TrainResult, *Artifacts, error) {
	var (
		X       [][]float64
		y       []float64
		dropped int
	)
	for _, pop := range domain.Populations {
		table, ok := tables[pop]
		if !ok || table == nil {
			continue
		}
		px, py, d := TrainingSet(table, matches[pop])
		X = append(X, px...)
		y = append(y, py...)
		dropped += d
	}

	if len(X) < MinTrainingRows {
		return nil, nil, &domain.InsufficientDataError{Count: len(X), Min: MinTrainingRows}
	}

	scaler, err := FitScaler(X)
	if err != nil {
		return nil, nil, err
	}
	Xs := scaler.TransformAll(X)

	model, err := s.regressor.Fit(Xs, y)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fit price model: %w", err)
	}
	linear, ok := model.(*LinearModel)
	if !ok {
		return nil, nil, fmt.Errorf("model %T cannot be persisted", model)
	}

	art := &Artifacts{
		FeatureNames:  append([]string(nil), FeatureNames...),
		Mean:          scaler.Mean,
		Scale:         scaler.Scale,
		Coefficients:  linear.Coefficients,
		Intercept:     linear.Intercept,
		Alpha:         s.alpha,
		R2:            Score(linear, Xs, y),
		TrainingCount: len(X),
		TrainedAt:     time.Now().UTC(),
	}
	if err := SaveArtifacts(s.modelDir, art); err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Int("samples", len(X)).
		Int("dropped", dropped).
		Float64("r2", art.R2).
		Msg("Trained price model")

	return &TrainResult{
		R2:             art.R2,
		MatchedCount:   art.TrainingCount,
		FeatureWeights: art.FeatureWeights(),
		TrainedAt:      art.TrainedAt,
	}, art, nil
}

// LoadArtifacts reads the last saved model
func (s *Service) LoadArtifacts() (*Artifacts, error) {
	return LoadArtifacts(s.modelDir)
}

// Predict writes predicted_price for every record with projected points.
// Missing features are 0; predictions are clipped at 0 and rounded.
// Records without a projection keep their current predicted price.
func (s *Service) Predict(table *domain.PlayerTable, art *Artifacts) (*domain.PlayerTable, int) {
	out := table.Clone()
	builder := newFeatureBuilder(out, art.FeatureNames)
	scaler, model := art.Scaler(), art.Model()

	predicted := 0
	for _, rec := range out.Records {
		if !rec.HasProjection() {
			continue
		}
		vec, _ := builder.vector(rec)
		price := int(math.RoundToEven(math.Max(0, model.Predict(scaler.Transform(vec)))))
		rec.PredictedPrice = &price
		predicted++
	}

	s.log.Debug().
		Str("population", string(table.Population)).
		Int("predicted", predicted).
		Msg("Predicted prices")

	return out, predicted
}
