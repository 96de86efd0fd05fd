package services

import (
	"context"
	"errors"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"

	"gorm.io/gorm"
)

// SettingsStore is the live copy of the company settings.
type SettingsStore interface {
	Settings() models.CompanySettings
	UpdateSettings(ctx context.Context, fn func(*models.CompanySettings)) (models.CompanySettings, error)
}

type SettingsService interface {
	GetSettings(ctx context.Context) models.CompanySettings
	UpdateSettings(ctx context.Context, input models.CompanySettings) (models.CompanySettings, error)
}

type settingsService struct {
	store       SettingsStore
	priceTables repository.PriceTableRepository
}

func NewSettingsService(store SettingsStore, priceTables repository.PriceTableRepository) SettingsService {
	return &settingsService{store: store, priceTables: priceTables}
}

func (s *settingsService) GetSettings(ctx context.Context) models.CompanySettings {
	return s.store.Settings()
}

func (s *settingsService) UpdateSettings(ctx context.Context, input models.CompanySettings) (models.CompanySettings, error) {
	if id := input.DefaultPriceTableID; id != nil {
		if _, err := s.priceTables.GetByID(ctx, *id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.CompanySettings{}, invalid("price table %d does not exist", *id)
			}
			return models.CompanySettings{}, err
		}
	}
	return s.store.UpdateSettings(ctx, func(current *models.CompanySettings) {
		current.CompanyName = input.CompanyName
		current.Document = input.Document
		current.DefaultPriceTableID = input.DefaultPriceTableID
		current.NotifyClients = input.NotifyClients
	})
}
