package repository

import (
	"context"

	"logistics_manager/internal/models"

	"gorm.io/gorm"
)

type PriceTableRepository interface {
	Create(ctx context.Context, table *models.PriceTable) error
	GetByID(ctx context.Context, id uint) (*models.PriceTable, error)
	GetByName(ctx context.Context, name string) (*models.PriceTable, error)
	List(ctx context.Context, activeOnly bool) ([]models.PriceTable, error)
	Update(ctx context.Context, table *models.PriceTable) error
	UpdateColumns(ctx context.Context, table *models.PriceTable, columns []string) error
	Delete(ctx context.Context, id uint) error
}

type priceTableRepository struct {
	crud[models.PriceTable]
}

func NewPriceTableRepository(db *gorm.DB) PriceTableRepository {
	return &priceTableRepository{crud[models.PriceTable]{db: db}}
}

func (r *priceTableRepository) Create(ctx context.Context, table *models.PriceTable) error {
	return r.createKeepingFlag(ctx, table, "is_active", &table.IsActive)
}

func (r *priceTableRepository) GetByID(ctx context.Context, id uint) (*models.PriceTable, error) {
	return r.first(ctx, id)
}

func (r *priceTableRepository) GetByName(ctx context.Context, name string) (*models.PriceTable, error) {
	var table models.PriceTable
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *priceTableRepository) List(ctx context.Context, activeOnly bool) ([]models.PriceTable, error) {
	var tables []models.PriceTable
	q := r.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&tables).Error
	return tables, err
}
