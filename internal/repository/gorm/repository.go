package gormrepository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alphasignals/internal/models"
	"alphasignals/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// signalCreatorRow is the scan target for the joined read. The creator
// columns are nullable: the profile row may be absent or incomplete.
type signalCreatorRow struct {
	models.Signal
	CreatorUsername   *string
	CreatorAlphaScore *int
}

func (s *Store) ListSignals(ctx context.Context) ([]repository.SignalWithCreator, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	var rows []signalCreatorRow
	joinErr := s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Select("signals.*, profiles.username AS creator_username, profiles.alpha_score AS creator_alpha_score").
		Joins("LEFT JOIN profiles ON profiles.user_id = signals.creator_id").
		Order("signals.created_at DESC").
		Scan(&rows).Error
	if joinErr == nil {
		items := make([]repository.SignalWithCreator, 0, len(rows))
		for _, row := range rows {
			items = append(items, repository.SignalWithCreator{
				Signal:  row.Signal,
				Creator: repository.ValidateProfileJoin(row.CreatorUsername, row.CreatorAlphaScore),
			})
		}
		return items, nil
	}

	// Fallback: signals alone, creators synthesized as missing. The list
	// must still render when the join is rejected.
	var signals []models.Signal
	if err := s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Order("created_at DESC").
		Find(&signals).Error; err != nil {
		return nil, joinErr
	}
	items := make([]repository.SignalWithCreator, 0, len(signals))
	for _, sig := range signals {
		items = append(items, repository.SignalWithCreator{
			Signal:  sig,
			Creator: repository.ProfileJoin{State: repository.ProfileJoinMissing},
		})
	}
	return items, nil
}

func (s *Store) GetSignalByID(ctx context.Context, id string) (*models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Signal
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) InsertSignal(ctx context.Context, item *models.Signal) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) InsertUnlock(ctx context.Context, item *models.UnlockRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListUnlockedSignalIDs(ctx context.Context, userID string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var ids []string
	if err := s.db.WithContext(ctx).
		Model(&models.UnlockRecord{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("signal_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Profile
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertProfile(ctx context.Context, item *models.Profile) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username",
			"alpha_score",
			"accuracy_rate",
			"total_signals",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) InsertAuditLog(ctx context.Context, item *models.AuditLog) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) DeleteAuditLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.AuditLog{})
	return res.RowsAffected, res.Error
}
