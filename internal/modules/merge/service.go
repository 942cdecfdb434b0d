package merge

import (
	"fmt"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/rs/zerolog"
)

// Service merges and prunes loaded sources per population
type Service struct {
	prune PruneOptions
	log   zerolog.Logger
}

// NewService creates a merge service
func NewService(prune PruneOptions, log zerolog.Logger) *Service {
	return &Service{
		prune: prune,
		log:   log.With().Str("component", "merge").Logger(),
	}
}

// Merge reduces one population's sources with its plan and prunes the result
func (s *Service) Merge(pop domain.Population, sources domain.SourceSet) (*domain.PlayerTable, error) {
	plan := PlanFor(pop)
	for _, step := range plan {
		if src, ok := sources[step.Kind]; ok && src != nil {
			s.log.Debug().
				Str("population", string(pop)).
				Str("source", string(step.Kind)).
				Str("authority", step.Authority.String()).
				Int("rows", len(src.Records)).
				Msg("Merging source")
		}
	}

	merged, err := Reduce(pop, sources, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to merge %s: %w", pop, err)
	}

	pruned, dropped := Prune(merged, s.prune)

	s.log.Info().
		Str("population", string(pop)).
		Int("players", len(pruned.Records)).
		Int("pruned", dropped).
		Int("columns", len(pruned.Columns)).
		Msg("Merged population")

	return pruned, nil
}

// MergeAll merges both populations
func (s *Service) MergeAll(sources map[domain.Population]domain.SourceSet) (map[domain.Population]*domain.PlayerTable, error) {
	result := make(map[domain.Population]*domain.PlayerTable, len(domain.Populations))
	for _, pop := range domain.Populations {
		table, err := s.Merge(pop, sources[pop])
		if err != nil {
			return nil, err
		}
		result[pop] = table
	}
	return result, nil
}
