package models

import "time"

// Alpha score tiers, highest first.
const (
	TierLegendary = "legendary"
	TierExpert    = "expert"
	TierSkilled   = "skilled"
	TierNovice    = "novice"
	TierLearning  = "learning"
)

// Profile is per-user reputation metadata. A signal's creator may have no
// profile row at all; callers must tolerate that.
type Profile struct {
	UserID   string `gorm:"type:uuid;primaryKey"`
	Username string `gorm:"type:varchar(100);not null;uniqueIndex"`

	AlphaScore   int     `gorm:"not null;default:0"`
	AccuracyRate float64 `gorm:"not null;default:0"`
	TotalSignals int     `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

// AlphaTier maps a 0-100 alpha score onto its named tier.
func AlphaTier(score int) string {
	switch {
	case score >= 90:
		return TierLegendary
	case score >= 75:
		return TierExpert
	case score >= 60:
		return TierSkilled
	case score >= 40:
		return TierNovice
	default:
		return TierLearning
	}
}
