package interview

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the concurrency-safe owner of live interview sessions. Each
// session is guarded by its own lock so turns on different sessions never
// contend; callers snapshot state under Mutate, perform provider I/O
// unlocked, then Mutate again to commit.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	removed bool
	s       *Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// Create inserts an initialized session and returns a copy of it.
func (st *Store) Create(profile Profile) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Profile:   profile,
		Status:    StatusInProgress,
		StartedAt: time.Now().UTC(),
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = &entry{s: s}
	return clone(s)
}

// Get returns a copy of the session, or ErrNotFound.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	e, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, ErrNotFound
	}
	return clone(e.s), nil
}

// Mutate applies fn as an atomic read-modify-write under the per-session
// lock. fn must not block on I/O.
func (st *Store) Mutate(id string, fn func(*Session)) error {
	st.mu.RLock()
	e, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return ErrNotFound
	}
	fn(e.s)
	return nil
}

// Remove deletes the session. Removing an absent id is a no-op, so it is
// always safe to call during failure cleanup.
func (st *Store) Remove(id string) {
	st.mu.Lock()
	e, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		e.mu.Lock()
		e.removed = true
		e.mu.Unlock()
	}
}

// ActiveCount reports how many sessions are currently held in memory.
func (st *Store) ActiveCount() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func clone(s *Session) *Session {
	c := *s
	c.Transcript = make([]Turn, len(s.Transcript))
	for i, t := range s.Transcript {
		c.Transcript[i] = t
		if t.Score != nil {
			v := *t.Score
			c.Transcript[i].Score = &v
		}
	}
	c.ScoreHistory = append([]int(nil), s.ScoreHistory...)
	return &c
}
