package session

import (
	"context"
	"fmt"
	"sync"

	"medlens/internal/domain"
)

// Session is one device's working copy of the signed-in user and their
// history. It is loaded once by Open and kept in step with the Store on
// every mutation.
type Session struct {
	mu       sync.RWMutex
	store    *Store
	deviceID string
	user     *domain.User
	history  []domain.MedicalAnalysis
}

// Open loads the device's user and, if one is signed in, their history.
func Open(ctx context.Context, store *Store, deviceID string) (*Session, error) {
	s := &Session{store: store, deviceID: deviceID, history: []domain.MedicalAnalysis{}}

	user, err := store.Load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return s, nil
	}
	history, err := store.LoadHistory(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.user = user
	s.history = history
	return s, nil
}

// DeviceID returns the device this session belongs to.
func (s *Session) DeviceID() string {
	return s.deviceID
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// History returns a copy of the working history, most recent first.
func (s *Session) History() []domain.MedicalAnalysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MedicalAnalysis, len(s.history))
	copy(out, s.history)
	return out
}

// Find returns the history entry with the given id.
func (s *Session) Find(id string) (*domain.MedicalAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.history {
		if s.history[i].ID == id {
			a := s.history[i]
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

// SignIn persists user as the device's current user and loads their
// history.
func (s *Session) SignIn(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveUser(ctx, s.deviceID, &user); err != nil {
		return err
	}
	history, err := s.store.LoadHistory(ctx, user.ID)
	if err != nil {
		return err
	}
	s.user = &user
	s.history = history
	return nil
}

// SignOut clears the stored user record and the working copy.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.history = []domain.MedicalAnalysis{}
	return s.store.ClearUser(ctx, s.deviceID)
}

// Record adds a to the history of userID, which must still be the
// signed-in user. The working copy is updated before the write and keeps a
// even when persisting fails. Returns domain.ErrNotSignedIn when nobody or
// somebody else is signed in.
func (s *Session) Record(ctx context.Context, userID string, a domain.MedicalAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.user.ID != userID {
		return domain.ErrNotSignedIn
	}
	s.history = Prepend(s.history, a, s.store.HistoryCap())

	stored, err := s.store.AppendAnalysis(ctx, s.user.ID, a)
	if err != nil {
		return fmt.Errorf("persisting analysis %s: %w", a.ID, err)
	}
	s.history = stored
	return nil
}
