package settings

import (
	"fmt"
	"sort"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/events"
	"github.com/rs/zerolog"
)

// Service reads and writes the league configuration
type Service struct {
	repo         *Repository
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new settings service. eventManager may be nil.
func NewService(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("service", "settings").Logger(),
	}
}

// SeedDefaults writes the default league keys that are missing
func (s *Service) SeedDefaults() error {
	n, err := s.repo.SeedDefaults(SettingDefaults())
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info().Int("keys", n).Msg("Seeded default league configuration")
	}
	return nil
}

// LoadLeagueConfig reads the league configuration.
// Missing keys fall back to defaults; unparseable keys are logged and fall back too.
func (s *Service) LoadLeagueConfig() (domain.LeagueConfig, error) {
	values, err := s.repo.GetAll()
	if err != nil {
		return domain.LeagueConfig{}, err
	}

	cfg, invalid := domain.LeagueConfigFromMap(values)
	for _, key := range invalid {
		s.log.Warn().
			Str("key", key).
			Str("value", values[key]).
			Msg("Invalid league config value, using default")
	}
	return cfg, nil
}

// SaveLeagueConfig validates and persists cfg
func (s *Service) SaveLeagueConfig(cfg domain.LeagueConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid league config: %w", err)
	}
	if err := s.repo.SetMany(cfg.ToMap()); err != nil {
		return err
	}

	if s.eventManager != nil {
		data := make(map[string]interface{})
		for k, v := range cfg.ToMap() {
			data[k] = v
		}
		s.eventManager.Emit(events.SettingsChanged, "settings", data)
	}
	return nil
}

// List returns every stored key with its description, sorted by key
func (s *Service) List() ([]SettingView, error) {
	values, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	views := make([]SettingView, 0, len(values))
	for k, v := range values {
		views = append(views, SettingView{Key: k, Value: v, Description: SettingDescriptions[k]})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Key < views[j].Key })
	return views, nil
}
