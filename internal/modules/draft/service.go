package draft

import (
	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/events"
	"github.com/rs/zerolog"
)

// LogEntry is a draft action with its derived value
type LogEntry struct {
	domain.DraftAction
	Value int `json:"value"`
}

// Roster summarizes one drafting team
type Roster struct {
	Team      string     `json:"team"`
	Players   []LogEntry `json:"players"`
	Spent     int        `json:"spent"`
	Remaining int        `json:"remaining"`
	Value     int        `json:"value"`
}

// Service exposes draft and undo to the API and CLI and announces them on the event bus
type Service struct {
	repo         *Repository
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a draft service. eventManager may be nil.
func NewService(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("service", "draft").Logger(),
	}
}

// Draft records a pick
func (s *Service) Draft(pop domain.Population, name string, price int, team string) (domain.DraftAction, error) {
	action, err := s.repo.Draft(pop, name, price, team)
	if err != nil {
		return action, err
	}
	if s.eventManager != nil {
		s.eventManager.EmitTyped("draft", &events.PlayerDraftedData{
			ActionID:   action.ActionID,
			PlayerName: action.PlayerName,
			Population: string(action.Population),
			Price:      action.DraftPrice,
			Team:       action.DraftingTeam,
		})
	}
	return action, nil
}

// Undo reverts the latest pick and returns the player's name.
// An empty log returns ("", false, nil).
func (s *Service) Undo() (string, bool, error) {
	action, ok, err := s.repo.Undo()
	if err != nil || !ok {
		return "", false, err
	}
	if s.eventManager != nil {
		s.eventManager.EmitTyped("draft", &events.DraftUndoneData{PlayerName: action.PlayerName})
	}
	return action.PlayerName, true, nil
}

// Log returns the draft log newest first with derived values
func (s *Service) Log() ([]LogEntry, error) {
	actions, err := s.repo.Log()
	if err != nil {
		return nil, err
	}
	return toEntries(actions), nil
}

// Roster returns the picks of team against a per-team budget
func (s *Service) Roster(team string, budget int) (*Roster, error) {
	actions, err := s.repo.ByTeam(team)
	if err != nil {
		return nil, err
	}

	roster := &Roster{Team: team, Players: toEntries(actions)}
	for _, p := range roster.Players {
		roster.Spent += p.DraftPrice
		roster.Value += p.Value
	}
	roster.Remaining = budget - roster.Spent
	return roster, nil
}

func toEntries(actions []domain.DraftAction) []LogEntry {
	entries := make([]LogEntry, len(actions))
	for i, a := range actions {
		entries[i] = LogEntry{DraftAction: a, Value: a.Value()}
	}
	return entries
}
