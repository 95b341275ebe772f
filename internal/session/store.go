package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"medlens/internal/domain"
	"medlens/internal/port"
)

// DefaultHistoryCap is the number of analyses kept per user.
const DefaultHistoryCap = 10

const (
	userKeyPrefix    = "prescription_user:"
	historyKeyPrefix = "prescription_history_"
)

// UserKey is the storage key of a device's current user record.
func UserKey(deviceID string) string {
	return userKeyPrefix + deviceID
}

// HistoryKey is the storage key of a user's history list.
func HistoryKey(userID string) string {
	return historyKeyPrefix + userID
}

// Store reads and writes the persisted user record and history lists.
// Unreadable records are treated as absent.
type Store struct {
	kv         port.KeyValueStore
	codec      Codec
	historyCap int
	log        zerolog.Logger
}

// NewStore creates a Store. A historyCap below 1 selects DefaultHistoryCap.
func NewStore(kv port.KeyValueStore, codec Codec, historyCap int, log zerolog.Logger) *Store {
	if historyCap < 1 {
		historyCap = DefaultHistoryCap
	}
	return &Store{
		kv:         kv,
		codec:      codec,
		historyCap: historyCap,
		log:        log.With().Str("component", "session_store").Logger(),
	}
}

// HistoryCap returns the maximum history length.
func (s *Store) HistoryCap() int {
	return s.historyCap
}

// Load returns the device's persisted user, or nil when none is stored or
// the record cannot be decoded.
func (s *Store) Load(ctx context.Context, deviceID string) (*domain.User, error) {
	data, err := s.kv.Get(ctx, UserKey(deviceID))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading user record: %w", err)
	}

	var u domain.User
	if err := s.codec.Unmarshal(data, &u); err != nil {
		s.log.Warn().Err(err).Str("device_id", deviceID).Msg("discarding unreadable user record")
		return nil, nil
	}
	if u.ID == "" {
		s.log.Warn().Str("device_id", deviceID).Msg("discarding user record without id")
		return nil, nil
	}
	return &u, nil
}

// LoadHistory returns the user's history, most recent first. Absent or
// unreadable lists yield an empty slice.
func (s *Store) LoadHistory(ctx context.Context, userID string) ([]domain.MedicalAnalysis, error) {
	data, err := s.kv.Get(ctx, HistoryKey(userID))
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.MedicalAnalysis{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	var history []domain.MedicalAnalysis
	if err := s.codec.Unmarshal(data, &history); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("discarding unreadable history")
		return []domain.MedicalAnalysis{}, nil
	}
	if history == nil {
		history = []domain.MedicalAnalysis{}
	}
	return history, nil
}

// SaveUser overwrites the device's user record.
func (s *Store) SaveUser(ctx context.Context, deviceID string, user *domain.User) error {
	data, err := s.codec.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user record: %w", err)
	}
	if err := s.kv.Set(ctx, UserKey(deviceID), data); err != nil {
		return fmt.Errorf("saving user record: %w", err)
	}
	return nil
}

// ClearUser removes the device's user record. The user's history stays
// stored under their id.
func (s *Store) ClearUser(ctx context.Context, deviceID string) error {
	if err := s.kv.Delete(ctx, UserKey(deviceID)); err != nil {
		return fmt.Errorf("clearing user record: %w", err)
	}
	return nil
}

// AppendAnalysis prepends a to the user's stored history, truncates it to
// the cap and persists it. It returns the list as written.
func (s *Store) AppendAnalysis(ctx context.Context, userID string, a domain.MedicalAnalysis) ([]domain.MedicalAnalysis, error) {
	history, err := s.LoadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	history = Prepend(history, a, s.historyCap)

	data, err := s.codec.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}
	if err := s.kv.Set(ctx, HistoryKey(userID), data); err != nil {
		return nil, fmt.Errorf("saving history: %w", err)
	}
	return history, nil
}

// Prepend returns a new slice with a in front of history, truncated to limit.
func Prepend(history []domain.MedicalAnalysis, a domain.MedicalAnalysis, limit int) []domain.MedicalAnalysis {
	n := len(history) + 1
	if n > limit {
		n = limit
	}
	out := make([]domain.MedicalAnalysis, 0, n)
	out = append(out, a)
	for _, h := range history {
		if len(out) == n {
			break
		}
		out = append(out, h)
	}
	return out
}
