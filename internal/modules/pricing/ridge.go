package pricing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultAlpha is the default L2 regularization strength
const DefaultAlpha = 1.0

// Ridge is L2-regularized least squares with an unpenalized intercept.
// It solves (XcᵀXc + αI)β = Xcᵀ(y - ȳ) on centered features; fitting is deterministic.
type Ridge struct {
	Alpha float64
}

// Fit implements Regressor
func (r Ridge) Fit(X [][]float64, y []float64) (Model, error) {
	return r.FitLinear(X, y)
}

// FitLinear fits and returns the concrete linear model
func (r Ridge) FitLinear(X [][]float64, y []float64) (*LinearModel, error) {
	n := len(X)
	if n == 0 {
		return nil, fmt.Errorf("cannot fit on zero rows")
	}
	if len(y) != n {
		return nil, fmt.Errorf("got %d rows but %d labels", n, len(y))
	}
	if r.Alpha < 0 {
		return nil, fmt.Errorf("alpha must not be negative, got %g", r.Alpha)
	}
	p := len(X[0])

	xMean := make([]float64, p)
	for _, row := range X {
		if len(row) != p {
			return nil, fmt.Errorf("ragged feature rows: want %d columns, got %d", p, len(row))
		}
		for j, v := range row {
			xMean[j] += v
		}
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean := stat.Mean(y, nil)

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i, row := range X {
		for j, v := range row {
			xc.Set(i, j, v-xMean[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	var gram mat.Dense
	gram.Mul(xc.T(), xc)
	for j := 0; j < p; j++ {
		gram.Set(j, j, gram.At(j, j)+r.Alpha)
	}

	var rhs mat.VecDense
	rhs.MulVec(xc.T(), yc)

	beta, err := solveNormal(&gram, &rhs, p)
	if err != nil {
		return nil, err
	}

	coef := make([]float64, p)
	intercept := yMean
	for j := 0; j < p; j++ {
		coef[j] = beta.AtVec(j)
		intercept -= coef[j] * xMean[j]
	}

	return &LinearModel{Coefficients: coef, Intercept: intercept}, nil
}

// solveNormal solves the symmetric system with Cholesky, falling back to a general solve
func solveNormal(gram *mat.Dense, rhs *mat.VecDense, p int) (*mat.VecDense, error) {
	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			sym.SetSym(i, j, (gram.At(i, j)+gram.At(j, i))/2)
		}
	}

	var beta mat.VecDense
	var chol mat.Cholesky
	if chol.Factorize(sym) {
		if err := chol.SolveVecTo(&beta, rhs); err == nil {
			return &beta, nil
		}
	}

	if err := beta.SolveVec(gram, rhs); err != nil {
		return nil, fmt.Errorf("ridge normal equations are singular: %w", err)
	}
	return &beta, nil
}

// Score returns the coefficient of determination R² of the model on (X, y)
func Score(m Model, X [][]float64, y []float64) float64 {
	return stat.RSquaredFrom(PredictAll(m, X), y, nil)
}
