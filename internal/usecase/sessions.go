package usecase

import (
	"sync"
	"time"

	"AstroPull/internal/domain/models"

	"github.com/golang/groupcache/lru"
	"github.com/google/uuid"
)

type sessionEntry struct {
	s        *models.Session
	lastSeen time.Time
}

// SessionStore keeps dashboard sessions in memory. It holds at most maxEntries
// sessions, evicting the least recently used, and forgets sessions idle for
// longer than idleTTL.
type SessionStore struct {
	mu      sync.Mutex
	lru     *lru.Cache
	idleTTL time.Duration
	now     func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore(maxEntries int, idleTTL time.Duration) *SessionStore {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &SessionStore{
		lru:     lru.New(maxEntries),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Get returns the live session with id, or nil.
func (st *SessionStore) Get(id string) *models.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.touch(id)
}

// GetOrCreate returns the live session with id or a fresh idle one under a new id.
func (st *SessionStore) GetOrCreate(id string) (s *models.Session, created bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if id != "" {
		if s := st.touch(id); s != nil {
			return s, false
		}
	}
	s = models.NewSession(uuid.NewString())
	st.lru.Add(s.ID, &sessionEntry{s: s, lastSeen: st.now()})
	return s, true
}

// Len reports the number of held sessions, expired ones included until touched.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lru.Len()
}

func (st *SessionStore) touch(id string) *models.Session {
	v, ok := st.lru.Get(id)
	if !ok {
		return nil
	}
	e := v.(*sessionEntry)
	now := st.now()
	if st.idleTTL > 0 && now.Sub(e.lastSeen) > st.idleTTL {
		st.lru.Remove(id)
		return nil
	}
	e.lastSeen = now
	return e.s
}
