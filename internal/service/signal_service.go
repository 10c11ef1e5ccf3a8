package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"alphasignals/internal/cache"
	"alphasignals/internal/models"
	"alphasignals/internal/repository"
	"alphasignals/internal/session"
	"alphasignals/internal/stream"
)

// SignalService owns signal reads and creation. All list reads go through
// the injected cache; mutations write through the repository and invalidate
// the affected keys.
type SignalService struct {
	Repo   repository.Repository
	Cache  *cache.Cache
	Events *stream.Hub
	Logger *zap.Logger
}

// ListSignals returns all signals newest first, each with its nullable
// creator profile. Served from cache; concurrent callers share one fetch.
func (s *SignalService) ListSignals(ctx context.Context) ([]repository.SignalWithCreator, error) {
	return cache.Fetch(ctx, s.Cache, signalsKey, func(ctx context.Context) ([]repository.SignalWithCreator, error) {
		return s.Repo.ListSignals(ctx)
	})
}

// UnlockedSignalIDs returns the signal ids the current principal has paid
// to unlock. Without a principal it returns empty without touching the
// repository.
func (s *SignalService) UnlockedSignalIDs(ctx context.Context) ([]string, error) {
	p, ok := session.PrincipalFromContext(ctx)
	if !ok {
		return []string{}, nil
	}
	return cache.Fetch(ctx, s.Cache, unlockedSignalsKey(p.UserID), func(ctx context.Context) ([]string, error) {
		return s.Repo.ListUnlockedSignalIDs(ctx, p.UserID)
	})
}

func (s *SignalService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.Repo.GetProfile(ctx, userID)
}

type CreateSignalInput struct {
	Title          string
	Description    string
	Prediction     string
	Confidence     int
	StakeAmount    decimal.Decimal
	StakeToken     string
	Category       string
	TimeHorizon    string
	ResolutionTime time.Time
	UnlockPrice    decimal.Decimal
}

func (in CreateSignalInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Prediction) == "" {
		return fmt.Errorf("%w: prediction is required", ErrInvalidInput)
	}
	if in.Confidence < 1 || in.Confidence > 99 {
		return fmt.Errorf("%w: confidence must be between 1 and 99", ErrInvalidInput)
	}
	if !in.StakeAmount.IsPositive() {
		return fmt.Errorf("%w: stake amount must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(in.StakeToken) == "" {
		return fmt.Errorf("%w: stake token is required", ErrInvalidInput)
	}
	if !models.ValidCategory(in.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	}
	if strings.TrimSpace(in.TimeHorizon) == "" {
		return fmt.Errorf("%w: time horizon is required", ErrInvalidInput)
	}
	if in.ResolutionTime.IsZero() || !in.ResolutionTime.After(time.Now()) {
		return fmt.Errorf("%w: resolution time must be in the future", ErrInvalidInput)
	}
	if in.UnlockPrice.IsNegative() {
		return fmt.Errorf("%w: unlock price cannot be negative", ErrInvalidInput)
	}
	return nil
}

// CreateSignal inserts one signal bound to the current principal. The
// principal gate runs before validation and before any repository call.
func (s *SignalService) CreateSignal(ctx context.Context, in CreateSignalInput) (*models.Signal, error) {
	p, ok := session.PrincipalFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	item := &models.Signal{
		ID:             uuid.NewString(),
		CreatorID:      p.UserID,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Prediction:     strings.TrimSpace(in.Prediction),
		Confidence:     in.Confidence,
		StakeAmount:    in.StakeAmount,
		StakeToken:     strings.TrimSpace(in.StakeToken),
		Category:       in.Category,
		TimeHorizon:    strings.TrimSpace(in.TimeHorizon),
		ResolutionTime: in.ResolutionTime.UTC(),
		IsLocked:       in.UnlockPrice.IsPositive(),
		UnlockPrice:    in.UnlockPrice,
		Status:         models.StatusActive,
	}
	if err := s.Repo.InsertSignal(ctx, item); err != nil {
		return nil, err
	}

	s.Cache.Invalidate(signalsKey)
	if s.Events != nil {
		s.Events.Publish(stream.Event{
			Type:     stream.EventSignalCreated,
			SignalID: item.ID,
			At:       item.CreatedAt,
		})
	}
	if s.Logger != nil {
		s.Logger.Info("signal created",
			zap.String("signal_id", item.ID),
			zap.String("creator_id", item.CreatorID),
			zap.String("category", item.Category),
		)
	}
	return item, nil
}
