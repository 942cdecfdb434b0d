package merge

import "github.com/aristath/draftboard/internal/domain"

// DefaultPruneThreshold is the ownership percentage at or below which thin players are dropped
const DefaultPruneThreshold = 5.0

// PruneOptions controls which thin records are dropped
type PruneOptions struct {
	// Threshold is an ownership percentage (0-100)
	Threshold float64
	// UnknownOwnershipIsLow treats a record without ownership data as low-owned
	UnknownOwnershipIsLow bool
}

// DefaultPruneOptions returns the 5% threshold with unknown ownership counted as low
func DefaultPruneOptions() PruneOptions {
	return PruneOptions{Threshold: DefaultPruneThreshold, UnknownOwnershipIsLow: true}
}

// Prune drops records with no projected points, no historical points and low ownership.
// Returns the kept table and the number of dropped records.
func Prune(table *domain.PlayerTable, opts PruneOptions) (*domain.PlayerTable, int) {
	out := &domain.PlayerTable{
		Population: table.Population,
		Columns:    append([]string(nil), table.Columns...),
		Records:    make([]*domain.PlayerRecord, 0, len(table.Records)),
	}

	for _, rec := range table.Records {
		if isThin(rec, opts) {
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out, len(table.Records) - len(out.Records)
}

func isThin(rec *domain.PlayerRecord, opts PruneOptions) bool {
	if rec.HasProjection() {
		return false
	}
	if _, ok := rec.Stat(domain.ColumnPoints); ok {
		return false
	}
	if rec.OwnershipPct == nil {
		return opts.UnknownOwnershipIsLow
	}
	return *rec.OwnershipPct <= opts.Threshold
}
