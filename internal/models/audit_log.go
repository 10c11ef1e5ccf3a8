package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records write requests against the API for after-the-fact review.
// Pruned on a schedule; never read on the hot path.
type AuditLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	// ActorID is null for anonymous requests; an empty string is not a
	// valid uuid and would fail the insert.
	ActorID *string `gorm:"type:uuid;index"`

	Action string `gorm:"type:varchar(100);not null;index"`
	Level  string `gorm:"type:varchar(10);not null"`

	Details datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
