package session

import "sync"

// Store is an in-memory session registry keyed by session ID.
// It is safe for concurrent use. Sessions live until the process exits;
// there is no persistence and no eviction.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Get retrieves a session by ID.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	return sess, ok
}

// GetOrCreate returns the session for id, lazily creating and seeding a
// new one when id is empty or unknown.
func (s *Store) GetOrCreate(id string) *Session {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the write lock.
	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			return sess
		}
	}

	sess := New(nil)
	s.sessions[sess.ID] = sess
	return sess
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// Len reports how many sessions are live.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
