package pricing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// ArtifactFile is the model artifact file name inside the model directory
const ArtifactFile = "model.msgpack"

// Artifacts is everything prediction needs after a restart:
// the exact feature ordering, scaler parameters and linear coefficients.
type Artifacts struct {
	FeatureNames  []string  `msgpack:"feature_names" json:"feature_names"`
	Mean          []float64 `msgpack:"mean" json:"mean"`
	Scale         []float64 `msgpack:"scale" json:"scale"`
	Coefficients  []float64 `msgpack:"coefficients" json:"coefficients"`
	Intercept     float64   `msgpack:"intercept" json:"intercept"`
	Alpha         float64   `msgpack:"alpha" json:"alpha"`
	R2            float64   `msgpack:"r2" json:"r2"`
	TrainingCount int       `msgpack:"training_count" json:"training_count"`
	TrainedAt     time.Time `msgpack:"trained_at" json:"trained_at"`
}

// Scaler returns the persisted scaler
func (a *Artifacts) Scaler() *StandardScaler {
	return &StandardScaler{Mean: a.Mean, Scale: a.Scale}
}

// Model returns the persisted linear model
func (a *Artifacts) Model() *LinearModel {
	return &LinearModel{Coefficients: a.Coefficients, Intercept: a.Intercept}
}

// FeatureWeights maps feature names to coefficients
func (a *Artifacts) FeatureWeights() map[string]float64 {
	weights := make(map[string]float64, len(a.FeatureNames))
	for j, name := range a.FeatureNames {
		if j < len(a.Coefficients) {
			weights[name] = a.Coefficients[j]
		}
	}
	return weights
}

func (a *Artifacts) validate() error {
	p := len(a.FeatureNames)
	if p == 0 || len(a.Mean) != p || len(a.Scale) != p || len(a.Coefficients) != p {
		return fmt.Errorf("inconsistent model artifacts: %d features, %d means, %d scales, %d coefficients",
			p, len(a.Mean), len(a.Scale), len(a.Coefficients))
	}
	return nil
}

// SaveArtifacts writes the artifacts atomically (temp file + rename)
func SaveArtifacts(dir string, a *Artifacts) error {
	if err := a.validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	data, err := msgpack.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode model artifacts: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ArtifactFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write model artifacts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close model artifacts: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(dir, ArtifactFile)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to install model artifacts: %w", err)
	}
	return nil
}

// LoadArtifacts reads the artifacts; domain.ErrNoModel when none were saved yet
func LoadArtifacts(dir string) (*Artifacts, error) {
	data, err := os.ReadFile(filepath.Join(dir, ArtifactFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNoModel
		}
		return nil, fmt.Errorf("failed to read model artifacts: %w", err)
	}

	var a Artifacts
	if err := msgpack.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifacts: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &a, nil
}
