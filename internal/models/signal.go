package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Signal categories as stored. "rwa" stands for real-world assets.
const (
	CategoryCrypto = "crypto"
	CategoryMacro  = "macro"
	CategoryRWA    = "rwa"
)

const (
	StatusActive    = "active"
	StatusResolved  = "resolved"
	StatusCancelled = "cancelled"
)

// Signal is a staked, time-bound prediction published by a creator.
// Locked signals hide the prediction text behind a paid unlock.
type Signal struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CreatorID string `gorm:"type:uuid;not null;index"`

	Title       string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:text;not null"`
	Prediction  string `gorm:"type:text;not null"`

	Confidence  int             `gorm:"not null"`
	StakeAmount decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	StakeToken  string          `gorm:"type:varchar(20);not null"`

	Category       string    `gorm:"type:varchar(20);not null;index"`
	TimeHorizon    string    `gorm:"type:varchar(50)"`
	ResolutionTime time.Time `gorm:"type:timestamptz;not null"`

	IsLocked    bool            `gorm:"not null;default:true"`
	UnlockPrice decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	Status           string  `gorm:"type:varchar(20);not null;index;default:'active'"`
	ResolutionResult *bool   `gorm:""`
	ResolutionNotes  *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Signal) TableName() string {
	return "signals"
}

func ValidCategory(category string) bool {
	switch category {
	case CategoryCrypto, CategoryMacro, CategoryRWA:
		return true
	}
	return false
}
