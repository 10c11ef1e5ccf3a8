package repository

import (
	"context"
	"time"

	"alphasignals/internal/models"
)

// ProfileJoinState tags the outcome of validating a creator profile that
// arrived embedded in a joined signal read.
type ProfileJoinState int

const (
	// ProfileJoinMissing: the creator has no profile row. Render defaults.
	ProfileJoinMissing ProfileJoinState = iota
	// ProfileJoinValid: username and alpha score both present and well formed.
	ProfileJoinValid
	// ProfileJoinMalformed: the joined columns came back partially populated
	// or out of range. Treated like missing, never surfaced as an error.
	ProfileJoinMalformed
)

// ProfileJoin is the nullable creator reputation attached to a listed signal.
// Username and AlphaScore are only meaningful when State is ProfileJoinValid.
type ProfileJoin struct {
	State      ProfileJoinState
	Username   string
	AlphaScore int
}

func (p ProfileJoin) Valid() bool {
	return p.State == ProfileJoinValid
}

// ValidateProfileJoin classifies raw joined columns into a tagged ProfileJoin.
// Both columns nil means the creator simply has no profile; anything else
// short of a complete, in-range pair is malformed.
func ValidateProfileJoin(username *string, alphaScore *int) ProfileJoin {
	if username == nil && alphaScore == nil {
		return ProfileJoin{State: ProfileJoinMissing}
	}
	if username == nil || alphaScore == nil {
		return ProfileJoin{State: ProfileJoinMalformed}
	}
	if *username == "" || *alphaScore < 0 || *alphaScore > 100 {
		return ProfileJoin{State: ProfileJoinMalformed}
	}
	return ProfileJoin{
		State:      ProfileJoinValid,
		Username:   *username,
		AlphaScore: *alphaScore,
	}
}

// SignalWithCreator pairs a signal row with its (nullable) creator profile.
type SignalWithCreator struct {
	Signal  models.Signal
	Creator ProfileJoin
}

// Repository is the typed data-access surface over the relational store.
// Row-level authorization is the store's concern; callers only bind the
// current principal id into the rows they write.
type Repository interface {
	// ListSignals returns all signals newest first, each paired with its
	// creator profile. Implementations must fall back to an unjoined read
	// (synthesizing missing profiles) when the joined read fails, and only
	// return an error when both reads fail.
	ListSignals(ctx context.Context) ([]SignalWithCreator, error)
	GetSignalByID(ctx context.Context, id string) (*models.Signal, error)
	InsertSignal(ctx context.Context, item *models.Signal) error

	InsertUnlock(ctx context.Context, item *models.UnlockRecord) error
	ListUnlockedSignalIDs(ctx context.Context, userID string) ([]string, error)

	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, item *models.Profile) error

	InsertAuditLog(ctx context.Context, item *models.AuditLog) error
	DeleteAuditLogsBefore(ctx context.Context, before time.Time) (int64, error)
}
