package repository

import (
	"context"

	"logistics_manager/internal/models"

	"gorm.io/gorm"
)

type DeliveryFilter struct {
	ClientID uint
	Status   string
	Period   Period
}

type DeliveryRepository interface {
	Create(ctx context.Context, delivery *models.Delivery) error
	GetByID(ctx context.Context, id uint) (*models.Delivery, error)
	List(ctx context.Context, filter DeliveryFilter) ([]models.Delivery, error)
	Update(ctx context.Context, delivery *models.Delivery) error
	UpdateColumns(ctx context.Context, delivery *models.Delivery, columns []string) error
	Delete(ctx context.Context, id uint) error
}

type deliveryRepository struct {
	crud[models.Delivery]
}

func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &deliveryRepository{crud[models.Delivery]{db: db}}
}

func (r *deliveryRepository) GetByID(ctx context.Context, id uint) (*models.Delivery, error) {
	return r.first(ctx, id, "Packages", "Client")
}

// List filters on client, status and creation time. Cancelled deliveries are
// included unless a status is given.
func (r *deliveryRepository) List(ctx context.Context, filter DeliveryFilter) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	q := r.db.WithContext(ctx).Preload("Packages").Order("created_at DESC")
	if filter.ClientID != 0 {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = filter.Period.apply(q, "created_at")
	err := q.Find(&deliveries).Error
	return deliveries, err
}
