package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"logistics_manager/internal/models"
	"logistics_manager/internal/pricing"
	"logistics_manager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Fields that feed the stored freight. Changing them later would leave the
// freight describing a different delivery, so they are fixed at creation.
var deliveryPricedFields = []string{
	"number", "clientId", "deliveryType", "cargoType", "cargoValue",
	"destinationCity", "distance", "totalWeight", "freightValue", "createdBy",
}

type DeliveryService interface {
	CreateDelivery(ctx context.Context, delivery *models.Delivery) error
	GetDelivery(ctx context.Context, id uint) (*models.Delivery, error)
	ListDeliveries(ctx context.Context, filter repository.DeliveryFilter) ([]models.Delivery, error)
	PatchDelivery(ctx context.Context, id uint, body []byte) (*models.Delivery, error)
	DeleteDelivery(ctx context.Context, id uint) error
}

type deliveryService struct {
	deliveryRepo repository.DeliveryRepository
	clientRepo   repository.ClientRepository
	priceTables  PriceTableService
	calc         *pricing.Calculator
	log          *zap.Logger
}

func NewDeliveryService(
	deliveryRepo repository.DeliveryRepository,
	clientRepo repository.ClientRepository,
	priceTables PriceTableService,
	calc *pricing.Calculator,
	log *zap.Logger,
) DeliveryService {
	return &deliveryService{
		deliveryRepo: deliveryRepo,
		clientRepo:   clientRepo,
		priceTables:  priceTables,
		calc:         calc,
		log:          log.Named("deliveries"),
	}
}

func newNumber(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// CreateDelivery prices the delivery against its client's table and stores
// the result. The freight is never recomputed afterwards.
func (s *deliveryService) CreateDelivery(ctx context.Context, delivery *models.Delivery) error {
	if err := Validate(delivery); err != nil {
		return err
	}
	client, err := s.activeClient(ctx, delivery.ClientID)
	if err != nil {
		return err
	}
	table, err := s.priceTables.TableForClient(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to resolve price table: %w", err)
	}

	delivery.TotalWeight = pricing.TotalWeight(delivery.Measurements())
	in := pricing.FreightInput{
		Weight:       delivery.TotalWeight,
		DeliveryType: pricing.DeliveryType(delivery.DeliveryType),
		CargoType:    pricing.CargoType(delivery.CargoType),
		CargoValue:   delivery.CargoValue,
	}
	if delivery.DestinationCity != "" || delivery.Distance > 0 {
		in.City = &pricing.City{Name: delivery.DestinationCity, Distance: delivery.Distance}
	}
	delivery.FreightValue = s.calc.Freight(table.RateTable(), in)

	delivery.ID = 0
	delivery.Client = nil
	if delivery.Number == "" {
		delivery.Number = newNumber("ENT")
	}
	if delivery.CargoType == "" {
		delivery.CargoType = string(pricing.CargoStandard)
	}
	delivery.Status = string(models.DeliveryPending)
	for i := range delivery.Packages {
		delivery.Packages[i].ID = 0
		delivery.Packages[i].DeliveryID = 0
	}

	if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}
	s.log.Info("delivery created",
		zap.Uint("delivery_id", delivery.ID),
		zap.String("number", delivery.Number),
		zap.Float64("freight", delivery.FreightValue))
	return nil
}

func (s *deliveryService) activeClient(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid("client %d does not exist", id)
	}
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, invalid("client %d is inactive", id)
	}
	return client, nil
}

func (s *deliveryService) GetDelivery(ctx context.Context, id uint) (*models.Delivery, error) {
	delivery, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "delivery")
	}
	return delivery, nil
}

func (s *deliveryService) ListDeliveries(ctx context.Context, filter repository.DeliveryFilter) ([]models.Delivery, error) {
	return s.deliveryRepo.List(ctx, filter)
}

func (s *deliveryService) PatchDelivery(ctx context.Context, id uint, body []byte) (*models.Delivery, error) {
	delivery, err := s.GetDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	columns, err := applyPatch(delivery, body, deliveryPricedFields...)
	if err != nil {
		return nil, err
	}
	if err := s.deliveryRepo.UpdateColumns(ctx, delivery, columns); err != nil {
		return nil, err
	}
	return delivery, nil
}

func (s *deliveryService) DeleteDelivery(ctx context.Context, id uint) error {
	return notFound(s.deliveryRepo.Delete(ctx, id), "delivery")
}
