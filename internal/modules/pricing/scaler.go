package pricing

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// machineEpsilon bounds the standard deviation treated as a constant column
const machineEpsilon = 0x1p-52

// StandardScaler standardizes features to zero mean and unit variance.
// Scale uses the population standard deviation; constant columns keep scale 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes per-column mean and scale once on the training rows
func FitScaler(X [][]float64) (*StandardScaler, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on zero rows")
	}
	p := len(X[0])
	s := &StandardScaler{Mean: make([]float64, p), Scale: make([]float64, p)}

	col := make([]float64, len(X))
	for j := 0; j < p; j++ {
		for i, row := range X {
			if len(row) != p {
				return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), p)
			}
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		s.Mean[j] = mean
		if std < 10*machineEpsilon {
			std = 1
		}
		s.Scale[j] = std
	}
	return s, nil
}

// Transform returns a standardized copy of x
func (s *StandardScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		if j >= len(s.Mean) {
			out[j] = v
			continue
		}
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// TransformAll standardizes every row
func (s *StandardScaler) TransformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, x := range X {
		out[i] = s.Transform(x)
	}
	return out
}
