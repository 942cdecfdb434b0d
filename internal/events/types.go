// Package events provides the in-process event bus used to push draft and pipeline updates to clients.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	ErrorOccurred EventType = "ERROR_OCCURRED"

	// Draft board events
	PlayerDrafted EventType = "PLAYER_DRAFTED"
	DraftUndone   EventType = "DRAFT_UNDONE"

	// Pipeline events
	StageCompleted  EventType = "STAGE_COMPLETED"
	PipelineDone    EventType = "PIPELINE_COMPLETED"
	Recalculated    EventType = "VALUES_RECALCULATED"
	ModelTrained    EventType = "MODEL_TRAINED"
	HistoryImported EventType = "HISTORY_IMPORTED"
	SettingsChanged EventType = "SETTINGS_CHANGED"
	BackupCompleted EventType = "BACKUP_COMPLETED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}
