package models

import "time"

// Session event types.
const (
	EventFetched  = "session.fetched"
	EventEnriched = "session.enriched"
)

// SessionEvent notifies that an action completed. It carries counts only,
// never fill data.
type SessionEvent struct {
	Type      string       `json:"type"`
	SessionID string       `json:"session_id"`
	State     SessionState `json:"state"`
	Venue     string       `json:"venue"`
	Fills     int          `json:"fills"`
	Total     float64      `json:"total,omitempty"`
	At        time.Time    `json:"at"`
}
