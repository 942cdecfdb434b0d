package pricing

// Regressor fits a model of labels on feature rows.
// Surrounding code only depends on this contract, not on a specific estimator.
type Regressor interface {
	Fit(X [][]float64, y []float64) (Model, error)
}

// Model predicts one label from one feature row
type Model interface {
	Predict(x []float64) float64
}

// PredictAll applies a model to every row
func PredictAll(m Model, X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = m.Predict(x)
	}
	return out
}

// LinearModel is y = intercept + Σ coefficients·x
type LinearModel struct {
	Coefficients []float64
	Intercept    float64
}

// Predict implements Model
func (m *LinearModel) Predict(x []float64) float64 {
	y := m.Intercept
	for j, c := range m.Coefficients {
		if j < len(x) {
			y += c * x[j]
		}
	}
	return y
}
