package services

import (
	"context"
	"errors"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LogbookService interface {
	CreateEntry(ctx context.Context, entry *models.LogbookEntry) error
	GetEntry(ctx context.Context, id uint) (*models.LogbookEntry, error)
	ListEntries(ctx context.Context, filter repository.LogbookFilter) ([]models.LogbookEntry, error)
	PatchEntry(ctx context.Context, id uint, body []byte) (*models.LogbookEntry, error)
	DeleteEntry(ctx context.Context, id uint) error
}

type logbookService struct {
	repo         repository.LogbookRepository
	employeeRepo repository.EmployeeRepository
	log          *zap.Logger
}

func NewLogbookService(repo repository.LogbookRepository, employeeRepo repository.EmployeeRepository, log *zap.Logger) LogbookService {
	return &logbookService{repo: repo, employeeRepo: employeeRepo, log: log.Named("logbook")}
}

// check enforces that a closed trip ends after it starts, on both the clock
// and the odometer.
func (s *logbookService) check(ctx context.Context, entry *models.LogbookEntry) error {
	if err := Validate(entry); err != nil {
		return err
	}
	if entry.ArrivalOdometer != nil && *entry.ArrivalOdometer < entry.DepartureOdometer {
		return invalid("arrival odometer %.1f is below departure odometer %.1f", *entry.ArrivalOdometer, entry.DepartureOdometer)
	}
	if entry.ArrivalAt != nil && entry.ArrivalAt.Before(entry.DepartureAt) {
		return invalid("arrival time is before departure time")
	}
	if entry.EmployeeID != nil {
		if _, err := s.employeeRepo.GetByID(ctx, *entry.EmployeeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("employee %d does not exist", *entry.EmployeeID)
			}
			return err
		}
	}
	return nil
}

func (s *logbookService) CreateEntry(ctx context.Context, entry *models.LogbookEntry) error {
	if err := s.check(ctx, entry); err != nil {
		return err
	}
	last, err := s.repo.LastOdometer(ctx, entry.VehiclePlate)
	if err != nil {
		return err
	}
	if entry.DepartureOdometer < last {
		s.log.Warn("departure odometer below last recorded reading",
			zap.String("plate", entry.VehiclePlate),
			zap.Float64("departure", entry.DepartureOdometer),
			zap.Float64("last", last))
	}
	entry.ID = 0
	entry.Employee = nil
	return s.repo.Create(ctx, entry)
}

func (s *logbookService) GetEntry(ctx context.Context, id uint) (*models.LogbookEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "logbook entry")
	}
	return entry, nil
}

func (s *logbookService) ListEntries(ctx context.Context, filter repository.LogbookFilter) ([]models.LogbookEntry, error) {
	return s.repo.List(ctx, filter)
}

func (s *logbookService) PatchEntry(ctx context.Context, id uint, body []byte) (*models.LogbookEntry, error) {
	entry, err := s.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	columns, err := applyPatch(entry, body)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateColumns(ctx, entry, columns); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *logbookService) DeleteEntry(ctx context.Context, id uint) error {
	return notFound(s.repo.Delete(ctx, id), "logbook entry")
}
