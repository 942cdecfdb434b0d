// Package merge reconciles per-category sources into one record per player.
package merge

import (
	"fmt"

	"github.com/aristath/draftboard/internal/domain"
)

// Authority decides how a source's values meet values already in the table
type Authority int

const (
	// FillOnly adds new columns and fills team/salary/position only where still null
	FillOnly Authority = iota
	// Overwrite replaces position/team/salary wherever the source has a value and owns ownership
	Overwrite
)

// String returns the authority name for logging
func (a Authority) String() string {
	switch a {
	case FillOnly:
		return "fill_only"
	case Overwrite:
		return "overwrite"
	}
	return fmt.Sprintf("authority(%d)", int(a))
}

// Step is one (source, authority) entry of a merge plan
type Step struct {
	Kind      domain.SourceKind
	Authority Authority
	Required  bool
}

// HitterPlan merges hitter sources; earlier fill-only steps win ties
var HitterPlan = []Step{
	{Kind: domain.SourceFantasy, Authority: FillOnly, Required: true},
	{Kind: domain.SourceAdvanced, Authority: FillOnly, Required: true},
	{Kind: domain.SourceBattedBall, Authority: FillOnly, Required: true},
	{Kind: domain.SourceProjections, Authority: FillOnly},
	{Kind: domain.SourcePositions, Authority: Overwrite},
}

// PitcherPlan merges pitcher sources; modeling follows batted ball
var PitcherPlan = []Step{
	{Kind: domain.SourceFantasy, Authority: FillOnly, Required: true},
	{Kind: domain.SourceAdvanced, Authority: FillOnly, Required: true},
	{Kind: domain.SourceBattedBall, Authority: FillOnly, Required: true},
	{Kind: domain.SourceModeling, Authority: FillOnly, Required: true},
	{Kind: domain.SourceProjections, Authority: FillOnly},
	{Kind: domain.SourcePositions, Authority: Overwrite},
}

// PlanFor returns the merge plan of a population
func PlanFor(pop domain.Population) []Step {
	if pop == domain.Pitchers {
		return PitcherPlan
	}
	return HitterPlan
}
