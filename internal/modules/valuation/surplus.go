package valuation

import "github.com/aristath/draftboard/internal/domain"

// ApplySurplus sets surplus = dollar value - predicted price where both are known, else nil.
// Only the surplus field of the returned copy differs from the input.
func ApplySurplus(table *domain.PlayerTable) *domain.PlayerTable {
	out := table.Clone()
	for _, rec := range out.Records {
		rec.SurplusValue = Surplus(rec)
	}
	return out
}

// Surplus computes one record's surplus
func Surplus(rec *domain.PlayerRecord) *int {
	if rec.DollarValue == nil || rec.PredictedPrice == nil {
		return nil
	}
	v := *rec.DollarValue - *rec.PredictedPrice
	return &v
}
