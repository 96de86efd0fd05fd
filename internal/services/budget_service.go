package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"logistics_manager/internal/models"
	"logistics_manager/internal/pricing"
	"logistics_manager/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultBudgetValidity applies when a budget is created without a validity date.
const DefaultBudgetValidity = 15 * 24 * time.Hour

type BudgetService interface {
	CreateBudget(ctx context.Context, budget *models.Budget) error
	GetBudget(ctx context.Context, id uint) (*models.Budget, error)
	ListBudgets(ctx context.Context, filter repository.BudgetFilter) ([]models.Budget, error)
	UpdateBudget(ctx context.Context, id uint, input *models.Budget) (*models.Budget, error)
	ApproveBudget(ctx context.Context, id uint) (*models.Budget, error)
	RejectBudget(ctx context.Context, id uint, reason string) (*models.Budget, error)
	ConvertBudget(ctx context.Context, id uint, actorID *uint) (*models.Delivery, error)
	DeleteBudget(ctx context.Context, id uint) error
}

type budgetService struct {
	budgetRepo  repository.BudgetRepository
	clientRepo  repository.ClientRepository
	priceTables PriceTableService
	deliveries  DeliveryService
	calc        *pricing.Calculator
	log         *zap.Logger
	now         func() time.Time
}

func NewBudgetService(
	budgetRepo repository.BudgetRepository,
	clientRepo repository.ClientRepository,
	priceTables PriceTableService,
	deliveries DeliveryService,
	calc *pricing.Calculator,
	log *zap.Logger,
) BudgetService {
	return &budgetService{
		budgetRepo:  budgetRepo,
		clientRepo:  clientRepo,
		priceTables: priceTables,
		deliveries:  deliveries,
		calc:        calc,
		log:         log.Named("budgets"),
		now:         time.Now,
	}
}

// price computes the budget value. Waiting time, when given, is charged as an
// extra service line at the table's hourly rate for the vehicle size.
func (s *budgetService) price(ctx context.Context, budget *models.Budget) error {
	client, err := s.clientRepo.GetByID(ctx, budget.ClientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invalid("client %d does not exist", budget.ClientID)
	}
	if err != nil {
		return err
	}
	table, err := s.priceTables.TableForClient(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to resolve price table: %w", err)
	}

	rt := table.RateTable()
	in := budget.Input()
	if budget.WaitingHours > 0 {
		in.AdditionalServices = append(in.AdditionalServices, pricing.AdditionalService{
			Description: "waiting time",
			Value:       pricing.WaitingHourCharge(rt, pricing.VehicleSize(budget.VehicleSize), budget.WaitingHours),
		})
	}
	budget.TotalValue = s.calc.Budget(rt, in)
	return nil
}

func (s *budgetService) CreateBudget(ctx context.Context, budget *models.Budget) error {
	if err := Validate(budget); err != nil {
		return err
	}
	if err := s.price(ctx, budget); err != nil {
		return err
	}

	budget.ID = 0
	budget.Client = nil
	budget.DeliveryID = nil
	budget.Number = newNumber("ORC")
	budget.Status = string(models.BudgetPending)
	if budget.ValidUntil == nil {
		until := s.now().Add(DefaultBudgetValidity)
		budget.ValidUntil = &until
	}
	for i := range budget.Packages {
		budget.Packages[i].ID = 0
		budget.Packages[i].BudgetID = 0
	}
	return s.budgetRepo.Create(ctx, budget)
}

func (s *budgetService) GetBudget(ctx context.Context, id uint) (*models.Budget, error) {
	budget, err := s.budgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "budget")
	}
	return budget, nil
}

func (s *budgetService) ListBudgets(ctx context.Context, filter repository.BudgetFilter) ([]models.Budget, error) {
	return s.budgetRepo.List(ctx, filter)
}

// UpdateBudget replaces the priced inputs of a pending budget and reprices it.
func (s *budgetService) UpdateBudget(ctx context.Context, id uint, input *models.Budget) (*models.Budget, error) {
	budget, err := s.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.Status != string(models.BudgetPending) {
		return nil, conflict("budget %s is %s and can no longer be edited", budget.Number, budget.Status)
	}
	if err := Validate(input); err != nil {
		return nil, err
	}

	budget.Client = nil
	budget.ClientID = input.ClientID
	budget.DeliveryType = input.DeliveryType
	budget.MerchandiseValue = input.MerchandiseValue
	budget.HasCollection = input.HasCollection
	budget.HasDelivery = input.HasDelivery
	budget.Origin = input.Origin
	budget.Destination = input.Destination
	budget.AdditionalServices = input.AdditionalServices
	budget.WaitingHours = input.WaitingHours
	budget.VehicleSize = input.VehicleSize
	budget.Packages = input.Packages
	if input.ValidUntil != nil {
		budget.ValidUntil = input.ValidUntil
	}
	if err := s.price(ctx, budget); err != nil {
		return nil, err
	}
	if err := s.budgetRepo.ReplacePackages(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	return s.GetBudget(ctx, id)
}

func (s *budgetService) ApproveBudget(ctx context.Context, id uint) (*models.Budget, error) {
	budget, err := s.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.Status != string(models.BudgetPending) {
		return nil, conflict("budget %s is %s", budget.Number, budget.Status)
	}
	if budget.ValidUntil != nil && s.now().After(*budget.ValidUntil) {
		return nil, conflict("budget %s expired on %s", budget.Number, budget.ValidUntil.Format("2006-01-02"))
	}
	budget.Status = string(models.BudgetApproved)
	if err := s.budgetRepo.UpdateColumns(ctx, budget, []string{"status"}); err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *budgetService) RejectBudget(ctx context.Context, id uint, reason string) (*models.Budget, error) {
	budget, err := s.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.Status != string(models.BudgetPending) && budget.Status != string(models.BudgetApproved) {
		return nil, conflict("budget %s is %s", budget.Number, budget.Status)
	}
	budget.Status = string(models.BudgetRejected)
	budget.RejectionReason = reason
	if err := s.budgetRepo.UpdateColumns(ctx, budget, []string{"status", "rejection_reason"}); err != nil {
		return nil, err
	}
	return budget, nil
}

// ConvertBudget creates a delivery from an approved budget. The delivery is
// priced by the freight calculator like any other delivery.
func (s *budgetService) ConvertBudget(ctx context.Context, id uint, actorID *uint) (*models.Delivery, error) {
	budget, err := s.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.Status != string(models.BudgetApproved) {
		return nil, conflict("only approved budgets can be converted, budget %s is %s", budget.Number, budget.Status)
	}

	delivery := &models.Delivery{
		ClientID:     budget.ClientID,
		DeliveryType: budget.DeliveryType,
		CargoType:    string(pricing.CargoStandard),
		CargoValue:   budget.MerchandiseValue,
		Origin:       budget.Origin,
		Destination:  budget.Destination,
		Notes:        "Created from budget " + budget.Number,
		CreatedBy:    actorID,
	}
	for _, p := range budget.Packages {
		delivery.Packages = append(delivery.Packages, models.DeliveryPackage{
			Weight: p.Weight, Width: p.Width, Length: p.Length, Height: p.Height, Quantity: p.Quantity,
		})
	}
	if err := s.deliveries.CreateDelivery(ctx, delivery); err != nil {
		return nil, err
	}

	budget.Status = string(models.BudgetConverted)
	budget.DeliveryID = &delivery.ID
	if err := s.budgetRepo.UpdateColumns(ctx, budget, []string{"status", "delivery_id"}); err != nil {
		return nil, fmt.Errorf("delivery %s created but budget not marked converted: %w", delivery.Number, err)
	}
	s.log.Info("budget converted", zap.String("budget", budget.Number), zap.String("delivery", delivery.Number))
	return delivery, nil
}

func (s *budgetService) DeleteBudget(ctx context.Context, id uint) error {
	budget, err := s.GetBudget(ctx, id)
	if err != nil {
		return err
	}
	if budget.Status == string(models.BudgetConverted) {
		return conflict("budget %s was converted into a delivery", budget.Number)
	}
	return notFound(s.budgetRepo.Delete(ctx, id), "budget")
}
