package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"txtension/internal/models"
)

// SettingsRepository persists settings documents as opaque JSON blobs.
type SettingsRepository interface {
	// Get returns the stored document, or nil when nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the document stored under key in a single write.
	Put(ctx context.Context, key string, value []byte) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("settings key is required")
	}
	var record models.SettingsRecord
	if err := r.db.WithContext(ctx).Where("name = ?", key).Take(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(record.Value), nil
}

func (r *settingsRepository) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("settings key is required")
	}
	record := models.SettingsRecord{
		Name:  key,
		Value: string(value),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      record.Value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&record).Error
}
