package repository

import (
	"context"

	"logistics_manager/internal/models"

	"gorm.io/gorm"
)

type ClientFilter struct {
	Search string
	Active *bool
}

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id uint) (*models.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	UpdateColumns(ctx context.Context, client *models.Client, columns []string) error
	Delete(ctx context.Context, id uint) error
}

type clientRepository struct {
	crud[models.Client]
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{crud[models.Client]{db: db}}
}

// GetByID loads the client together with its price table, if any.
func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.createKeepingFlag(ctx, client, "is_active", &client.IsActive)
}

func (r *clientRepository) GetByID(ctx context.Context, id uint) (*models.Client, error) {
	return r.first(ctx, id, "PriceTable")
}

func (r *clientRepository) List(ctx context.Context, filter ClientFilter) ([]models.Client, error) {
	var clients []models.Client
	q := r.db.WithContext(ctx).Order("name")
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR document LIKE ? OR email LIKE ?", like, like, like)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	err := q.Find(&clients).Error
	return clients, err
}
