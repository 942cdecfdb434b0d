// Package pricing predicts auction prices with a regularized linear model
// calibrated on realized historical prices.
package pricing

import "github.com/aristath/draftboard/internal/domain"

// Feature names
const (
	FeatureProjectedPoints = "proj_fpts"
	FeatureWRCPlus         = "proj_wrc_plus"
	FeatureHomeRuns        = "proj_hr"
	FeatureSteals          = "proj_sb"
	FeatureOPS             = "proj_ops"
	FeatureInnings         = "proj_ip"
	FeatureERA             = "proj_era"
	FeatureStrikeoutsPer9  = "proj_k_per_9"
	FeatureCloser          = "is_closer"

	projectedStrikeouts = "proj_so"
	projectedSaves      = "proj_sv"
	closerSaves         = 10.0
)

// HitterFeatures are the hitter model inputs
var HitterFeatures = []string{FeatureProjectedPoints, FeatureWRCPlus, FeatureHomeRuns, FeatureSteals, FeatureOPS}

// PitcherFeatures are the pitcher model inputs
var PitcherFeatures = []string{FeatureProjectedPoints, FeatureInnings, FeatureERA, FeatureStrikeoutsPer9, FeatureCloser}

// FeatureNames is the shared model space: hitter features, then pitcher-only features
var FeatureNames = unionFeatures(HitterFeatures, PitcherFeatures)

// FeaturesFor returns the features a population contributes signal to
func FeaturesFor(pop domain.Population) []string {
	if pop == domain.Pitchers {
		return PitcherFeatures
	}
	return HitterFeatures
}

func unionFeatures(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, f := range list {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// featureBuilder builds vectors in the shared feature space for one population table
type featureBuilder struct {
	pop   domain.Population
	table *domain.PlayerTable
	own   map[string]bool
	names []string
}

func newFeatureBuilder(table *domain.PlayerTable, names []string) *featureBuilder {
	own := make(map[string]bool)
	for _, f := range FeaturesFor(table.Population) {
		own[f] = true
	}
	return &featureBuilder{pop: table.Population, table: table, own: own, names: names}
}

// vector returns the feature vector of rec. Other-population features and nulls are 0;
// complete is false when one of the population's own features is null.
func (b *featureBuilder) vector(rec *domain.PlayerRecord) (vec []float64, complete bool) {
	vec = make([]float64, len(b.names))
	complete = true
	for j, name := range b.names {
		if !b.own[name] {
			continue
		}
		v, ok := b.value(rec, name)
		if !ok {
			complete = false
			continue
		}
		vec[j] = v
	}
	return vec, complete
}

// value reads one own-population feature.
// A feature column absent from the whole table reads as 0.
func (b *featureBuilder) value(rec *domain.PlayerRecord, name string) (float64, bool) {
	if b.pop == domain.Pitchers {
		switch name {
		case FeatureStrikeoutsPer9:
			return b.strikeoutsPer9(rec)
		case FeatureCloser:
			if sv, _ := rec.Stat(projectedSaves); sv > closerSaves {
				return 1, true
			}
			return 0, true
		}
	}

	if !b.table.HasColumn(name) {
		return 0, true
	}
	return rec.Stat(name)
}

// strikeoutsPer9 derives K/9 from projected strikeouts and innings (0 without innings).
// Without those columns a projected K/9 column is used as-is.
func (b *featureBuilder) strikeoutsPer9(rec *domain.PlayerRecord) (float64, bool) {
	if b.table.HasColumn(projectedStrikeouts) && b.table.HasColumn(FeatureInnings) {
		ip, _ := rec.Stat(FeatureInnings)
		if ip <= 0 {
			return 0, true
		}
		so, _ := rec.Stat(projectedStrikeouts)
		return so / ip * 9, true
	}
	if b.table.HasColumn(FeatureStrikeoutsPer9) {
		return rec.Stat(FeatureStrikeoutsPer9)
	}
	return 0, true
}
