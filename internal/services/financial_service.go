package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var reportComputedFields = []string{
	"clientId", "periodStart", "periodEnd", "deliveryCount", "totalWeight", "totalFreight",
	"totalCargoValue", "status", "generatedAt", "closedAt", "paidAt", "createdBy",
}

type GenerateReportRequest struct {
	ClientID uint `json:"clientId" binding:"required"`
	Year     int  `json:"year" binding:"required,gte=2000,lte=2100"`
	Month    int  `json:"month" binding:"required,gte=1,lte=12"`
}

type FinancialService interface {
	GenerateReport(ctx context.Context, req GenerateReportRequest, actorID *uint) (*models.FinancialReport, error)
	GetReport(ctx context.Context, id uint) (*models.FinancialReport, error)
	ListReports(ctx context.Context, filter repository.ReportFilter) ([]models.FinancialReport, error)
	PatchReport(ctx context.Context, id uint, body []byte) (*models.FinancialReport, error)
	ChangeReportStatus(ctx context.Context, id uint, status string) (*models.FinancialReport, error)
	DeleteReport(ctx context.Context, id uint) error
}

type financialService struct {
	reportRepo repository.FinancialRepository
	clientRepo repository.ClientRepository
	log        *zap.Logger
	now        func() time.Time
}

func NewFinancialService(reportRepo repository.FinancialRepository, clientRepo repository.ClientRepository, log *zap.Logger) FinancialService {
	return &financialService{
		reportRepo: reportRepo,
		clientRepo: clientRepo,
		log:        log.Named("financial"),
		now:        time.Now,
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// GenerateReport totals a client's deliveries for one calendar month. An open
// report for the same month is refreshed in place; closed or paid ones are left alone.
func (s *financialService) GenerateReport(ctx context.Context, req GenerateReportRequest, actorID *uint) (*models.FinancialReport, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("client %d does not exist", req.ClientID)
		}
		return nil, err
	}

	month := now.With(time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.Local))
	start, end := month.BeginningOfMonth(), month.EndOfMonth()

	report, err := s.reportRepo.FindByPeriod(ctx, req.ClientID, start)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		report = &models.FinancialReport{
			ClientID:    req.ClientID,
			PeriodStart: start,
			PeriodEnd:   end,
			Status:      string(models.ReportOpen),
			CreatedBy:   actorID,
		}
	case err != nil:
		return nil, err
	case report.Status != string(models.ReportOpen):
		return nil, conflict("report for %s is already %s", start.Format("2006-01"), report.Status)
	}

	totals, err := s.reportRepo.SumDeliveries(ctx, req.ClientID, repository.Period{From: start, To: end})
	if err != nil {
		return nil, fmt.Errorf("failed to total deliveries: %w", err)
	}
	report.DeliveryCount = totals.Count
	report.TotalWeight = round2(totals.Weight)
	report.TotalFreight = round2(totals.Freight)
	report.TotalCargoValue = round2(totals.CargoValue)
	report.GeneratedAt = s.now()

	if report.ID == 0 {
		err = s.reportRepo.Create(ctx, report)
	} else {
		err = s.reportRepo.UpdateColumns(ctx, report, []string{
			"delivery_count", "total_weight", "total_freight", "total_cargo_value", "generated_at",
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	s.log.Info("financial report generated",
		zap.Uint("report_id", report.ID),
		zap.Uint("client_id", req.ClientID),
		zap.String("period", start.Format("2006-01")),
		zap.Int("deliveries", report.DeliveryCount))
	return report, nil
}

func (s *financialService) GetReport(ctx context.Context, id uint) (*models.FinancialReport, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "report")
	}
	return report, nil
}

func (s *financialService) ListReports(ctx context.Context, filter repository.ReportFilter) ([]models.FinancialReport, error) {
	return s.reportRepo.List(ctx, filter)
}

// PatchReport edits the free-form parts of a report. Totals only change by regenerating.
func (s *financialService) PatchReport(ctx context.Context, id uint, body []byte) (*models.FinancialReport, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	columns, err := applyPatch(report, body, reportComputedFields...)
	if err != nil {
		return nil, err
	}
	if err := s.reportRepo.UpdateColumns(ctx, report, columns); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *financialService) ChangeReportStatus(ctx context.Context, id uint, status string) (*models.FinancialReport, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	next := models.ReportStatus(status)
	if !models.ReportStatus(report.Status).CanMoveTo(next) {
		return nil, conflict("report cannot move from %s to %s", report.Status, status)
	}

	at := s.now()
	columns := []string{"status"}
	switch next {
	case models.ReportClosed:
		report.ClosedAt = &at
		columns = append(columns, "closed_at")
	case models.ReportPaid:
		report.PaidAt = &at
		columns = append(columns, "paid_at")
	case models.ReportOpen:
		report.ClosedAt = nil
		columns = append(columns, "closed_at")
	}
	report.Status = string(next)
	if err := s.reportRepo.UpdateColumns(ctx, report, columns); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *financialService) DeleteReport(ctx context.Context, id uint) error {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}
	if report.Status == string(models.ReportPaid) {
		return conflict("paid reports cannot be deleted")
	}
	return notFound(s.reportRepo.Delete(ctx, id), "report")
}
