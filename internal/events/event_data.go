package events

// EventData is implemented by typed payloads so callers don't build maps by hand
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
	// Fields renders the payload for Event.Data
	Fields() map[string]interface{}
}

// PlayerDraftedData contains data for PlayerDrafted events
type PlayerDraftedData struct {
	ActionID   string `json:"action_id"`
	PlayerName string `json:"player_name"`
	Population string `json:"population"`
	Price      int    `json:"price"`
	Team       string `json:"team"`
}

// EventType returns the event type for PlayerDraftedData
func (d *PlayerDraftedData) EventType() EventType {
	return PlayerDrafted
}

// Fields returns the event payload
func (d *PlayerDraftedData) Fields() map[string]interface{} {
	return map[string]interface{}{
		"action_id":   d.ActionID,
		"player_name": d.PlayerName,
		"population":  d.Population,
		"price":       d.Price,
		"team":        d.Team,
	}
}

// DraftUndoneData contains data for DraftUndone events
type DraftUndoneData struct {
	PlayerName string `json:"player_name"`
}

// EventType returns the event type for DraftUndoneData
func (d *DraftUndoneData) EventType() EventType {
	return DraftUndone
}

// Fields returns the event payload
func (d *DraftUndoneData) Fields() map[string]interface{} {
	return map[string]interface{}{"player_name": d.PlayerName}
}

// StageCompletedData contains data for StageCompleted events
type StageCompletedData struct {
	Stage      string  `json:"stage"`
	Rows       int     `json:"rows"`
	DurationMs float64 `json:"duration_ms"`
}

// EventType returns the event type for StageCompletedData
func (d *StageCompletedData) EventType() EventType {
	return StageCompleted
}

// Fields returns the event payload
func (d *StageCompletedData) Fields() map[string]interface{} {
	return map[string]interface{}{
		"stage":       d.Stage,
		"rows":        d.Rows,
		"duration_ms": d.DurationMs,
	}
}

// ModelTrainedData contains data for ModelTrained events
type ModelTrainedData struct {
	R2           float64 `json:"r2"`
	MatchedCount int     `json:"matched_count"`
}

// EventType returns the event type for ModelTrainedData
func (d *ModelTrainedData) EventType() EventType {
	return ModelTrained
}

// Fields returns the event payload
func (d *ModelTrainedData) Fields() map[string]interface{} {
	return map[string]interface{}{
		"r2":            d.R2,
		"matched_count": d.MatchedCount,
	}
}

// RecalculatedData contains data for Recalculated events
type RecalculatedData struct {
	HittersValued  int  `json:"hitters_valued"`
	PitchersValued int  `json:"pitchers_valued"`
	Predicted      bool `json:"predicted"`
}

// EventType returns the event type for RecalculatedData
func (d *RecalculatedData) EventType() EventType {
	return Recalculated
}

// Fields returns the event payload
func (d *RecalculatedData) Fields() map[string]interface{} {
	return map[string]interface{}{
		"hitters_valued":  d.HittersValued,
		"pitchers_valued": d.PitchersValued,
		"predicted":       d.Predicted,
	}
}
