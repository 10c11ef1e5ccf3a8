package db

import (
	"alphasignals/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Profile{},
		&models.Signal{},
		&models.UnlockRecord{},
		&models.AuditLog{},
	)
}
