package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"redbull-counter-backend/internal/models"
)

// GormStore keeps entries in the session_entries table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.SessionEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *GormStore) Commit(ctx context.Context, change Change) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(change.Set) > 0 {
			now := time.Now().UTC()
			entries := make([]models.SessionEntry, 0, len(change.Set))
			for k, v := range change.Set {
				entries = append(entries, models.SessionEntry{Key: k, Value: v, UpdatedAt: now})
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "entry_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&entries).Error
			if err != nil {
				return fmt.Errorf("upsert entries: %w", err)
			}
		}
		if len(change.Remove) > 0 {
			if err := tx.Where("entry_key IN ?", change.Remove).Delete(&models.SessionEntry{}).Error; err != nil {
				return fmt.Errorf("remove entries: %w", err)
			}
		}
		return nil
	})
}
