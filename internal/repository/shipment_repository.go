package repository

import (
	"context"

	"logistics_manager/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShipmentFilter struct {
	ClientID uint
	Status   string
	Tracking string
}

type ShipmentRepository interface {
	Create(ctx context.Context, shipment *models.Shipment) error
	GetByID(ctx context.Context, id uint) (*models.Shipment, error)
	List(ctx context.Context, filter ShipmentFilter) ([]models.Shipment, error)
	Update(ctx context.Context, shipment *models.Shipment) error
	UpdateColumns(ctx context.Context, shipment *models.Shipment, columns []string) error
	ApplyTransition(ctx context.Context, shipment *models.Shipment, columns []string, event *models.ShipmentStatusEvent) error
	Events(ctx context.Context, shipmentID uint) ([]models.ShipmentStatusEvent, error)
	Delete(ctx context.Context, id uint) error
}

type shipmentRepository struct {
	crud[models.Shipment]
}

func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &shipmentRepository{crud[models.Shipment]{db: db}}
}

func (r *shipmentRepository) GetByID(ctx context.Context, id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Preload("Client").
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&shipment, id).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *shipmentRepository) List(ctx context.Context, filter ShipmentFilter) ([]models.Shipment, error) {
	var shipments []models.Shipment
	q := r.db.WithContext(ctx).Preload("Documents").Order("created_at DESC")
	if filter.ClientID != 0 {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Tracking != "" {
		q = q.Where("tracking_number = ?", filter.Tracking)
	}
	err := q.Find(&shipments).Error
	return shipments, err
}

// ApplyTransition writes the changed status columns and appends the history
// row in one transaction.
func (r *shipmentRepository) ApplyTransition(ctx context.Context, shipment *models.Shipment, columns []string, event *models.ShipmentStatusEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(shipment).Select(columns).Omit(clause.Associations).Updates(shipment)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		event.ShipmentID = shipment.ID
		return tx.Create(event).Error
	})
}

func (r *shipmentRepository) Events(ctx context.Context, shipmentID uint) ([]models.ShipmentStatusEvent, error) {
	var events []models.ShipmentStatusEvent
	err := r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID).Order("id").Find(&events).Error
	return events, err
}
