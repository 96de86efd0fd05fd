package repository

import (
	"context"
	"time"

	"logistics_manager/internal/models"

	"gorm.io/gorm"
)

type ReportFilter struct {
	ClientID uint
	Status   string
}

// DeliveryTotals is the aggregate a financial report is generated from.
type DeliveryTotals struct {
	Count      int
	Weight     float64
	Freight    float64
	CargoValue float64
}

type FinancialRepository interface {
	Create(ctx context.Context, report *models.FinancialReport) error
	GetByID(ctx context.Context, id uint) (*models.FinancialReport, error)
	List(ctx context.Context, filter ReportFilter) ([]models.FinancialReport, error)
	Update(ctx context.Context, report *models.FinancialReport) error
	UpdateColumns(ctx context.Context, report *models.FinancialReport, columns []string) error
	Delete(ctx context.Context, id uint) error
	FindByPeriod(ctx context.Context, clientID uint, start time.Time) (*models.FinancialReport, error)
	SumDeliveries(ctx context.Context, clientID uint, period Period) (DeliveryTotals, error)
}

type financialRepository struct {
	crud[models.FinancialReport]
}

func NewFinancialRepository(db *gorm.DB) FinancialRepository {
	return &financialRepository{crud[models.FinancialReport]{db: db}}
}

func (r *financialRepository) GetByID(ctx context.Context, id uint) (*models.FinancialReport, error) {
	return r.first(ctx, id, "Client")
}

func (r *financialRepository) List(ctx context.Context, filter ReportFilter) ([]models.FinancialReport, error) {
	var reports []models.FinancialReport
	q := r.db.WithContext(ctx).Order("period_start DESC, id DESC")
	if filter.ClientID != 0 {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	err := q.Find(&reports).Error
	return reports, err
}

// FindByPeriod returns the client's report starting at start.
func (r *financialRepository) FindByPeriod(ctx context.Context, clientID uint, start time.Time) (*models.FinancialReport, error) {
	var report models.FinancialReport
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND period_start = ?", clientID, start).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// SumDeliveries totals the client's non-cancelled deliveries created within period.
func (r *financialRepository) SumDeliveries(ctx context.Context, clientID uint, period Period) (DeliveryTotals, error) {
	var row struct {
		Count      int
		Weight     float64
		Freight    float64
		CargoValue float64
	}
	q := r.db.WithContext(ctx).Model(&models.Delivery{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_weight), 0) AS weight, "+
			"COALESCE(SUM(freight_value), 0) AS freight, COALESCE(SUM(cargo_value), 0) AS cargo_value").
		Where("client_id = ? AND status <> ?", clientID, string(models.DeliveryCancelled))
	q = period.apply(q, "created_at")
	if err := q.Scan(&row).Error; err != nil {
		return DeliveryTotals{}, err
	}
	return DeliveryTotals(row), nil
}
