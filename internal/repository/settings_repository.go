package repository

import (
	"context"

	"logistics_manager/internal/models"

	"gorm.io/gorm"
)

// SettingsRepository persists the single company settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.CompanySettings, error)
	Save(ctx context.Context, settings *models.CompanySettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.CompanySettings, error) {
	var settings models.CompanySettings
	if err := r.db.WithContext(ctx).Order("id").First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// Save updates the existing row, or creates it on first use.
func (r *settingsRepository) Save(ctx context.Context, settings *models.CompanySettings) error {
	if settings.ID == 0 {
		if existing, err := r.Get(ctx); err == nil {
			settings.ID = existing.ID
		}
	}
	return r.db.WithContext(ctx).Save(settings).Error
}
