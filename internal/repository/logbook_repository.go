package repository

import (
	"context"

	"logistics_manager/internal/models"

	"gorm.io/gorm"
)

type LogbookFilter struct {
	VehiclePlate string
	EmployeeID   uint
	Period       Period
}

type LogbookRepository interface {
	Create(ctx context.Context, entry *models.LogbookEntry) error
	GetByID(ctx context.Context, id uint) (*models.LogbookEntry, error)
	List(ctx context.Context, filter LogbookFilter) ([]models.LogbookEntry, error)
	Update(ctx context.Context, entry *models.LogbookEntry) error
	UpdateColumns(ctx context.Context, entry *models.LogbookEntry, columns []string) error
	Delete(ctx context.Context, id uint) error
	LastOdometer(ctx context.Context, plate string) (float64, error)
}

type logbookRepository struct {
	crud[models.LogbookEntry]
}

func NewLogbookRepository(db *gorm.DB) LogbookRepository {
	return &logbookRepository{crud[models.LogbookEntry]{db: db}}
}

func (r *logbookRepository) GetByID(ctx context.Context, id uint) (*models.LogbookEntry, error) {
	return r.first(ctx, id, "Employee")
}

func (r *logbookRepository) List(ctx context.Context, filter LogbookFilter) ([]models.LogbookEntry, error) {
	var entries []models.LogbookEntry
	q := r.db.WithContext(ctx).Preload("Employee").Order("departure_at DESC")
	if filter.VehiclePlate != "" {
		q = q.Where("vehicle_plate = ?", filter.VehiclePlate)
	}
	if filter.EmployeeID != 0 {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	q = filter.Period.apply(q, "departure_at")
	err := q.Find(&entries).Error
	return entries, err
}

// LastOdometer is the highest reading recorded for the vehicle, zero if none.
func (r *logbookRepository) LastOdometer(ctx context.Context, plate string) (float64, error) {
	var reading float64
	err := r.db.WithContext(ctx).Model(&models.LogbookEntry{}).
		Where("vehicle_plate = ?", plate).
		Select("COALESCE(MAX(COALESCE(arrival_odometer, departure_odometer)), 0)").
		Scan(&reading).Error
	return reading, err
}
