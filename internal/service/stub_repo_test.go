package service

import (
	"context"
	"sync"
	"time"

	"alphasignals/internal/models"
	"alphasignals/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
type stubRepo struct {
	mu sync.Mutex

	signals  []repository.SignalWithCreator
	unlocks  []models.UnlockRecord
	profiles map[string]models.Profile

	listCalls         int
	unlockedCalls     int
	getSignalCalls    int
	insertSignalCalls int
	insertUnlockCalls int

	listErr         error
	insertUnlockErr error

	// When set, InsertUnlock blocks until the channel is closed. Used to
	// exercise the in-flight submit guard.
	insertUnlockGate chan struct{}
}

func (s *stubRepo) ListSignals(ctx context.Context) ([]repository.SignalWithCreator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]repository.SignalWithCreator, len(s.signals))
	copy(out, s.signals)
	return out, nil
}

func (s *stubRepo) GetSignalByID(ctx context.Context, id string) (*models.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getSignalCalls++
	for _, item := range s.signals {
		if item.Signal.ID == id {
			sig := item.Signal
			return &sig, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) InsertSignal(ctx context.Context, item *models.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertSignalCalls++
	s.signals = append([]repository.SignalWithCreator{{
		Signal:  *item,
		Creator: repository.ProfileJoin{State: repository.ProfileJoinMissing},
	}}, s.signals...)
	return nil
}

func (s *stubRepo) InsertUnlock(ctx context.Context, item *models.UnlockRecord) error {
	s.mu.Lock()
	s.insertUnlockCalls++
	gate := s.insertUnlockGate
	err := s.insertUnlockErr
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.unlocks = append(s.unlocks, *item)
	s.mu.Unlock()
	return nil
}

func (s *stubRepo) ListUnlockedSignalIDs(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unlockedCalls++
	var ids []string
	for _, u := range s.unlocks {
		if u.UserID == userID {
			ids = append(ids, u.SignalID)
		}
	}
	return ids, nil
}

func (s *stubRepo) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *stubRepo) UpsertProfile(ctx context.Context, item *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profiles == nil {
		s.profiles = map[string]models.Profile{}
	}
	s.profiles[item.UserID] = *item
	return nil
}

func (s *stubRepo) InsertAuditLog(ctx context.Context, item *models.AuditLog) error {
	return nil
}

func (s *stubRepo) DeleteAuditLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (s *stubRepo) counts() (list, unlocked, insertSignal, insertUnlock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, s.unlockedCalls, s.insertSignalCalls, s.insertUnlockCalls
}
