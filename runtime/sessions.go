package runtime

import (
	"sync"
	"time"

	"quiz-relay/domain"
)

// SessionStore holds at most one quiz session per room. A session only exists
// while its room exists; the dispatcher ends it when the room empties.
//
// SessionStore is safe for concurrent use by multiple goroutines.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.RoomID]domain.QuizSession
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.RoomID]domain.QuizSession),
		now:      time.Now,
	}
}

// Start creates the session for roomID at question zero, replacing any prior
// session. A restart overwriting live state is allowed, not an error.
func (s *SessionStore) Start(roomID domain.RoomID, quiz map[string]any) domain.QuizSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := domain.QuizSession{
		RoomID:          roomID,
		Quiz:            cloneQuiz(quiz),
		StartedAt:       s.now().UTC(),
		CurrentQuestion: 0,
	}
	s.sessions[roomID] = session
	return session
}

// AdvanceQuestion moves the session to the given index. Advancing a room with
// no session is a no-op; the caller still broadcasts the change.
func (s *SessionStore) AdvanceQuestion(roomID domain.RoomID, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[roomID]
	if !ok {
		return
	}
	session.CurrentQuestion = index
	s.sessions[roomID] = session
}

// End deletes the session, no-op if absent.
func (s *SessionStore) End(roomID domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, roomID)
}

func (s *SessionStore) Get(roomID domain.RoomID) (domain.QuizSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[roomID]
	return session, ok
}

// cloneQuiz shields the stored session from later mutation of the caller's
// map. Nested values stay shared; the payload is opaque and never mutated by
// the relay.
func cloneQuiz(quiz map[string]any) map[string]any {
	if quiz == nil {
		return nil
	}
	out := make(map[string]any, len(quiz))
	for k, v := range quiz {
		out[k] = v
	}
	return out
}
