// Package valuation converts projected points into replacement-level dollar values.
package valuation

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/draftboard/internal/domain"
)

// PoolSummary describes one population's valuation run
type PoolSummary struct {
	Population        domain.Population `json:"population"`
	Budget            float64           `json:"budget"`
	ReplacementRank   int               `json:"replacement_rank"`
	ReplacementPoints float64           `json:"replacement_points"`
	TotalMarginal     float64           `json:"total_marginal"`
	DollarsPerPoint   float64           `json:"dollars_per_point"`
	Projected         int               `json:"projected"` // Players with projected points
	Valued            int               `json:"valued"`    // Players worth more than $0
}

// Result holds both valued populations
type Result struct {
	Hitters   *domain.PlayerTable
	Pitchers  *domain.PlayerTable
	Summaries []PoolSummary
}

// CalculateDollarValues values both populations under cfg.
// Inputs are not modified; the same inputs always produce the same output.
func CalculateDollarValues(hitters, pitchers *domain.PlayerTable, cfg domain.LeagueConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid league config: %w", err)
	}

	h, hs := ValuePool(hitters, cfg.PoolBudget(domain.Hitters), cfg.ReplacementRank(domain.Hitters))
	p, ps := ValuePool(pitchers, cfg.PoolBudget(domain.Pitchers), cfg.ReplacementRank(domain.Pitchers))

	return &Result{Hitters: h, Pitchers: p, Summaries: []PoolSummary{hs, ps}}, nil
}

// ValuePool values one population against its budget.
// replacementRank is 1-based; a pool shorter than it uses its lowest projection.
func ValuePool(table *domain.PlayerTable, budget float64, replacementRank int) (*domain.PlayerTable, PoolSummary) {
	out := table.Clone()
	summary := PoolSummary{
		Population:      table.Population,
		Budget:          budget,
		ReplacementRank: replacementRank,
	}

	points := make([]float64, 0, len(out.Records))
	for _, rec := range out.Records {
		rec.DollarValue, rec.PredictedPrice, rec.SurplusValue = nil, nil, nil
		if v, ok := rec.Stat(domain.ColumnProjectedPoints); ok {
			points = append(points, v)
		}
	}
	summary.Projected = len(points)
	if len(points) == 0 {
		return out, summary
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(points)))
	replacement := points[len(points)-1]
	if replacementRank >= 1 && replacementRank <= len(points) {
		replacement = points[replacementRank-1]
	}
	summary.ReplacementPoints = replacement

	marginal := make(map[*domain.PlayerRecord]float64, len(points))
	for _, rec := range out.Records {
		if v, ok := rec.Stat(domain.ColumnProjectedPoints); ok {
			m := math.Max(0, v-replacement)
			marginal[rec] = m
			summary.TotalMarginal += m
		}
	}

	if summary.TotalMarginal > 0 {
		summary.DollarsPerPoint = budget / summary.TotalMarginal
	}

	for _, rec := range out.Records {
		m, ok := marginal[rec]
		if !ok {
			continue
		}
		dollars := 0
		if m > 0 {
			dollars = int(math.RoundToEven(m * summary.DollarsPerPoint))
			if dollars < 1 {
				dollars = 1
			}
			summary.Valued++
		}
		value, predicted, surplus := dollars, dollars, 0
		rec.DollarValue = &value
		rec.PredictedPrice = &predicted
		rec.SurplusValue = &surplus
	}

	return out, summary
}
