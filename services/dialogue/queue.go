package dialogue

import "sync"

// sessionLocks serialises turn handling per session: a turn arriving while a
// prior turn is still in flight waits behind it (per-session FIFO), so
// collected fields never see a lost update. Different sessions do not block
// each other.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// acquire blocks until the session's lock is held and returns the release
// function. Lock entries are dropped once the last waiter releases.
func (s *sessionLocks) acquire(sessionID string) func() {
	s.mu.Lock()
	if s.locks == nil {
		s.locks = make(map[string]*sessionLock)
	}
	entry, ok := s.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		s.locks[sessionID] = entry
	}
	entry.refs++
	s.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		s.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}
