package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnlockRecord is evidence that a user paid for access to a locked signal.
// Written exactly once per successful unlock, never updated or deleted here.
// The (signal_id, user_id) uniqueness constraint lives in the store.
type UnlockRecord struct {
	ID       string `gorm:"type:uuid;primaryKey"`
	SignalID string `gorm:"type:uuid;not null;uniqueIndex:idx_signal_user"`
	UserID   string `gorm:"type:uuid;not null;uniqueIndex:idx_signal_user;index"`

	UnlockPrice decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (UnlockRecord) TableName() string {
	return "signal_unlocks"
}
