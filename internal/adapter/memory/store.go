package memory

import (
	"sync"
	"time"

	"obsidian-vault-bot/internal/domain"
)

// SessionStore keeps pending note sessions in memory, one per user.
// Expired sessions are dropped lazily on access.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*domain.Session
	editing  map[int64]domain.EditField
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*domain.Session),
		editing:  make(map[int64]domain.EditField),
		now:      time.Now,
	}
}

func (s *SessionStore) Put(sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
}

func (s *SessionStore) Get(userID int64) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, domain.ErrNoSession
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, userID)
		delete(s.editing, userID)
		return nil, domain.ErrSessionExpired
	}
	return sess, nil
}

func (s *SessionStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	delete(s.editing, userID)
}

func (s *SessionStore) SetEditField(userID int64, field domain.EditField) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing[userID] = field
}

func (s *SessionStore) EditField(userID int64) (domain.EditField, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	field, ok := s.editing[userID]
	return field, ok
}

func (s *SessionStore) ClearEditField(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.editing, userID)
}
