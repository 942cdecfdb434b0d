package merge

import (
	"fmt"

	"github.com/aristath/draftboard/internal/domain"
)

// Reduce folds the sources of one population through the plan.
// The first step seeds the table; every later step is an outer join by name.
// Draft and valuation state of the result is reset.
func Reduce(pop domain.Population, sources domain.SourceSet, plan []Step) (*domain.PlayerTable, error) {
	table := domain.NewPlayerTable(pop)

	for _, step := range plan {
		src, ok := sources[step.Kind]
		if !ok || src == nil {
			if step.Required {
				return nil, fmt.Errorf("%s: required %s source missing", pop, step.Kind)
			}
			continue
		}
		table = apply(table, src, step.Authority)
	}

	for _, rec := range table.Records {
		rec.ResetState()
	}
	return table, nil
}

// MergeCategory adds a per-category source with fill-only authority
func MergeCategory(base *domain.PlayerTable, other *domain.SourceTable) *domain.PlayerTable {
	return apply(base, other, FillOnly)
}

// MergeProjection adds a projection source. Projection columns are already
// namespaced by the loader, so players present on only one side both survive
// without column collisions.
func MergeProjection(base *domain.PlayerTable, proj *domain.SourceTable) *domain.PlayerTable {
	return apply(base, proj, FillOnly)
}

// MergePositionUniverse overlays the league platform export, the most current
// source of position, roster team, salary and ownership.
func MergePositionUniverse(base *domain.PlayerTable, pos *domain.SourceTable) *domain.PlayerTable {
	return apply(base, pos, Overwrite)
}

// apply runs one step against a copy of base
func apply(base *domain.PlayerTable, src *domain.SourceTable, authority Authority) *domain.PlayerTable {
	out := base.Clone()
	index := out.Index()
	records := dedup(src.Records)

	newCols := make(map[string]bool, len(src.Columns))
	for _, col := range src.Columns {
		if !out.HasColumn(col) {
			newCols[col] = true
			out.AddColumn(col)
		}
	}

	if authority == Overwrite {
		// Ownership comes exclusively from this source
		for _, rec := range out.Records {
			rec.OwnershipPct = nil
		}
	}

	for _, rec := range records {
		target, exists := index[rec.Name]
		if !exists {
			target = domain.NewPlayerRecord(rec.Name)
			out.Records = append(out.Records, target)
			index[rec.Name] = target
		}

		for col, v := range rec.Stats {
			if newCols[col] {
				target.Stats[col] = v
			}
		}

		switch authority {
		case FillOnly:
			fillMetadata(target, rec)
		case Overwrite:
			overwriteMetadata(target, rec)
		}
	}

	return out
}

// fillMetadata copies team, salary and position only where target is null
func fillMetadata(target, src *domain.PlayerRecord) {
	if target.Team == nil && src.Team != nil {
		v := *src.Team
		target.Team = &v
	}
	if target.Salary == nil && src.Salary != nil {
		v := *src.Salary
		target.Salary = &v
	}
	if target.Position == nil && src.Position != nil {
		v := *src.Position
		target.Position = &v
	}
}

// overwriteMetadata copies every non-null value of src and takes ownership as-is
func overwriteMetadata(target, src *domain.PlayerRecord) {
	if src.Team != nil {
		v := *src.Team
		target.Team = &v
	}
	if src.Salary != nil {
		v := *src.Salary
		target.Salary = &v
	}
	if src.Position != nil {
		v := *src.Position
		target.Position = &v
	}
	if src.OwnershipPct != nil {
		v := *src.OwnershipPct
		target.OwnershipPct = &v
	}
}

// dedup keeps the first (highest ranked) record per name
func dedup(records []*domain.PlayerRecord) []*domain.PlayerRecord {
	seen := make(map[string]bool, len(records))
	out := make([]*domain.PlayerRecord, 0, len(records))
	for _, rec := range records {
		if seen[rec.Name] {
			continue
		}
		seen[rec.Name] = true
		out = append(out, rec)
	}
	return out
}
