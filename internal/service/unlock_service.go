package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"alphasignals/internal/cache"
	"alphasignals/internal/models"
	"alphasignals/internal/pricing"
	"alphasignals/internal/repository"
	"alphasignals/internal/session"
	"alphasignals/internal/stream"
)

// UnlockService orchestrates paid access to locked signals: the auth gate,
// the pricing quote, the single mutation, and cache invalidation.
type UnlockService struct {
	Repo   repository.Repository
	Cache  *cache.Cache
	Events *stream.Hub
	Logger *zap.Logger

	mu         sync.Mutex
	submitting map[string]struct{}
}

// UnlockQuote is the confirmation surface for one unlock attempt.
type UnlockQuote struct {
	SignalID  string            `json:"signal_id"`
	Title     string            `json:"title"`
	CreatorID string            `json:"creator_id"`
	Pricing   pricing.Breakdown `json:"pricing"`
}

// FlowState tracks a single unlock attempt.
type FlowState int

const (
	StateIdle FlowState = iota
	StateAuthCheck
	StateConfirming
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s FlowState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthCheck:
		return "auth_check"
	case StateConfirming:
		return "confirming"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// UnlockFlow is one unlock attempt:
//
//	Idle -> AuthCheck -> Confirming -> Submitting -> Succeeded
//	                         ^                   \-> Failed
//	                         \---- manual retry ----/
//
// A failed submit lands in Failed and may be confirmed again manually;
// there is no automatic retry, this is a user-money operation.
type UnlockFlow struct {
	svc     *UnlockService
	state   FlowState
	signal  *models.Signal
	lastErr error
}

func (s *UnlockService) NewFlow() *UnlockFlow {
	return &UnlockFlow{svc: s, state: StateIdle}
}

func (f *UnlockFlow) State() FlowState { return f.state }
func (f *UnlockFlow) LastError() error { return f.lastErr }

// Start runs the auth check and produces the pricing quote. Without a
// principal the flow halts before touching the signal.
func (f *UnlockFlow) Start(ctx context.Context, signalID string) (*UnlockQuote, error) {
	f.state = StateAuthCheck
	if _, ok := session.PrincipalFromContext(ctx); !ok {
		f.state = StateIdle
		f.lastErr = ErrNotAuthenticated
		return nil, ErrNotAuthenticated
	}

	sig, err := f.svc.Repo.GetSignalByID(ctx, signalID)
	if err != nil {
		f.state = StateIdle
		f.lastErr = err
		return nil, err
	}
	if sig == nil {
		f.state = StateIdle
		f.lastErr = ErrSignalNotFound
		return nil, ErrSignalNotFound
	}
	if !sig.IsLocked {
		f.state = StateIdle
		f.lastErr = ErrSignalNotLocked
		return nil, ErrSignalNotLocked
	}

	f.signal = sig
	f.state = StateConfirming
	return &UnlockQuote{
		SignalID:  sig.ID,
		Title:     sig.Title,
		CreatorID: sig.CreatorID,
		Pricing:   pricing.Split(sig.UnlockPrice),
	}, nil
}

// Confirm submits the unlock at the quoted price. This is the single point
// where the mutation happens; a failed submit lands in Failed and may be
// confirmed again.
func (f *UnlockFlow) Confirm(ctx context.Context, quotedPrice decimal.Decimal) (*models.UnlockRecord, error) {
	if f.state == StateSubmitting {
		return nil, ErrUnlockInFlight
	}
	if (f.state != StateConfirming && f.state != StateFailed) || f.signal == nil {
		f.lastErr = ErrFlowNotConfirmable
		return nil, ErrFlowNotConfirmable
	}

	f.state = StateSubmitting
	rec, err := f.svc.submit(ctx, f.signal.ID, quotedPrice)
	if err != nil {
		f.state = StateFailed
		f.lastErr = err
		return nil, err
	}
	f.state = StateSucceeded
	f.lastErr = nil
	return rec, nil
}

// Cancel before submission is free and has no server-side effect.
func (f *UnlockFlow) Cancel() {
	if f.state == StateConfirming || f.state == StateAuthCheck || f.state == StateFailed {
		f.state = StateIdle
		f.signal = nil
	}
}

// Unlock runs the whole flow for callers that already confirmed.
func (s *UnlockService) Unlock(ctx context.Context, signalID string, quotedPrice decimal.Decimal) (*models.UnlockRecord, error) {
	flow := s.NewFlow()
	if _, err := flow.Start(ctx, signalID); err != nil {
		return nil, err
	}
	return flow.Confirm(ctx, quotedPrice)
}

func (s *UnlockService) submit(ctx context.Context, signalID string, quotedPrice decimal.Decimal) (*models.UnlockRecord, error) {
	p, ok := session.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	guard := p.UserID + "|" + signalID
	if !s.beginSubmit(guard) {
		return nil, ErrUnlockInFlight
	}
	defer s.endSubmit(guard)

	// Re-read at submit time so a stale quote cannot buy at an outdated
	// price.
	sig, err := s.Repo.GetSignalByID(ctx, signalID)
	if err != nil {
		return nil, err
	}
	if sig == nil {
		return nil, ErrSignalNotFound
	}
	if !sig.UnlockPrice.Equal(quotedPrice) {
		return nil, ErrPriceChanged
	}

	rec := &models.UnlockRecord{
		ID:          uuid.NewString(),
		SignalID:    sig.ID,
		UserID:      p.UserID,
		UnlockPrice: sig.UnlockPrice,
	}
	if err := s.Repo.InsertUnlock(ctx, rec); err != nil {
		return nil, err
	}

	s.Cache.Invalidate(signalsKey, unlockedSignalsKey(p.UserID))
	if s.Events != nil {
		s.Events.Publish(stream.Event{
			Type:     stream.EventSignalUnlocked,
			SignalID: sig.ID,
			At:       time.Now().UTC(),
		})
	}
	if s.Logger != nil {
		s.Logger.Info("signal unlocked",
			zap.String("signal_id", sig.ID),
			zap.String("user_id", p.UserID),
			zap.String("price", sig.UnlockPrice.String()),
		)
	}
	return rec, nil
}

func (s *UnlockService) beginSubmit(guard string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting == nil {
		s.submitting = map[string]struct{}{}
	}
	if _, busy := s.submitting[guard]; busy {
		return false
	}
	s.submitting[guard] = struct{}{}
	return true
}

func (s *UnlockService) endSubmit(guard string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.submitting, guard)
}
