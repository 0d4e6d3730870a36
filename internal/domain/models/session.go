package models

import (
	"sync"
	"time"
)

// SessionState is the lifecycle stage of one dashboard session.
type SessionState string

const (
	StateIdle     SessionState = "idle"
	StateFetched  SessionState = "fetched"
	StateEnriched SessionState = "enriched"
)

// Session holds the fills of one interactive session in memory.
// Idle -> Fetched on a successful fetch, Fetched -> Enriched on enrich.
// A new fetch always lands in Fetched and drops any prior enrichment.
type Session struct {
	ID string

	mu         sync.RWMutex
	gen        uint64 // bumped on every fetch
	state      SessionState
	address    string
	fills      []RawFill
	enriched   []EnrichedFill
	pivot      *Pivot
	fetchedAt  time.Time
	enrichedAt time.Time
	lastErr    error
}

// SessionSnapshot is a read-only view of a session for display.
type SessionSnapshot struct {
	ID         string       `json:"id"`
	State      SessionState `json:"state"`
	Address    string       `json:"address,omitempty"`
	Fills      int          `json:"fills"`
	Enriched   int          `json:"enriched"`
	FetchedAt  *time.Time   `json:"fetched_at,omitempty"`
	EnrichedAt *time.Time   `json:"enriched_at,omitempty"`
	Pivot      *Pivot       `json:"-"`
	LastError  string       `json:"last_error,omitempty"`
}

// NewSession returns an idle session.
func NewSession(id string) *Session {
	return &Session{ID: id, state: StateIdle}
}

// State returns the current lifecycle stage.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Fetched stores a new fill set and resets the session to Fetched.
func (s *Session) Fetched(address string, fills []RawFill, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state = StateFetched
	s.address = address
	s.fills = fills
	s.enriched = nil
	s.pivot = nil
	s.fetchedAt = at
	s.enrichedAt = time.Time{}
	s.lastErr = nil
}

// Loaded returns the fetched rows and the fetch generation they belong to.
// ok is false while Idle. The slice is shared; callers must not modify it.
func (s *Session) Loaded() (fills []RawFill, gen uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == StateIdle {
		return nil, 0, false
	}
	return s.fills, s.gen, true
}

// Enriched records the enrichment of fetch generation gen. It returns false
// and changes nothing if the session is Idle or was refetched since.
func (s *Session) Enriched(gen uint64, rows []EnrichedFill, p *Pivot, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle || gen != s.gen {
		return false
	}
	s.state = StateEnriched
	s.enriched = rows
	s.pivot = p
	s.enrichedAt = at
	s.lastErr = nil
	return true
}

// Failed records the diagnostic of the last failed action without touching
// the stored data or state.
func (s *Session) Failed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// Enrichment returns the enriched rows of the last enrich, nil unless Enriched.
func (s *Session) Enrichment() []EnrichedFill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enriched
}

// Pivot returns the last enrichment's pivot, nil unless Enriched.
func (s *Session) Pivot() *Pivot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pivot
}

// LastError returns the diagnostic of the last failed action.
func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Snapshot copies the displayable session fields.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := SessionSnapshot{
		ID:       s.ID,
		State:    s.state,
		Address:  s.address,
		Fills:    len(s.fills),
		Enriched: len(s.enriched),
		Pivot:    s.pivot,
	}
	if !s.fetchedAt.IsZero() {
		t := s.fetchedAt
		snap.FetchedAt = &t
	}
	if !s.enrichedAt.IsZero() {
		t := s.enrichedAt
		snap.EnrichedAt = &t
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}
