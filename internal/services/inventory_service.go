package services

import (
	"context"
	"errors"
	"strings"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MovementRequest struct {
	Type     string  `json:"type" binding:"required,oneof=in out"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Note     string  `json:"note"`
}

type InventoryService interface {
	CreateItem(ctx context.Context, item *models.InventoryItem) error
	GetItem(ctx context.Context, id uint) (*models.InventoryItem, error)
	ListItems(ctx context.Context, filter repository.InventoryFilter) ([]models.InventoryItem, error)
	PatchItem(ctx context.Context, id uint, body []byte) (*models.InventoryItem, error)
	DeleteItem(ctx context.Context, id uint) error
	RecordMovement(ctx context.Context, itemID uint, req MovementRequest, actorID *uint) (*models.InventoryItem, error)
	Movements(ctx context.Context, itemID uint) ([]models.InventoryMovement, error)
}

type inventoryService struct {
	repo repository.InventoryRepository
	log  *zap.Logger
}

func NewInventoryService(repo repository.InventoryRepository, log *zap.Logger) InventoryService {
	return &inventoryService{repo: repo, log: log.Named("inventory")}
}

// CreateItem stores a new item. Opening stock is allowed; later changes go
// through movements.
func (s *inventoryService) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	if err := Validate(item); err != nil {
		return err
	}
	if item.Quantity < 0 {
		return invalid("quantity cannot be negative")
	}
	item.ID = 0
	item.SKU = strings.TrimSpace(item.SKU)
	return s.repo.Create(ctx, item)
}

func (s *inventoryService) GetItem(ctx context.Context, id uint) (*models.InventoryItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "inventory item")
	}
	return item, nil
}

func (s *inventoryService) ListItems(ctx context.Context, filter repository.InventoryFilter) ([]models.InventoryItem, error) {
	return s.repo.List(ctx, filter)
}

func (s *inventoryService) PatchItem(ctx context.Context, id uint, body []byte) (*models.InventoryItem, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	columns, err := applyPatch(item, body, "quantity")
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateColumns(ctx, item, columns); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, id uint) error {
	return notFound(s.repo.Delete(ctx, id), "inventory item")
}

func (s *inventoryService) RecordMovement(ctx context.Context, itemID uint, req MovementRequest, actorID *uint) (*models.InventoryItem, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	movement := &models.InventoryMovement{
		ItemID:   itemID,
		Type:     req.Type,
		Quantity: req.Quantity,
		Note:     req.Note,
		ActorID:  actorID,
	}
	item, err := s.repo.ApplyMovement(ctx, movement)
	if errors.Is(err, repository.ErrInsufficientStock) {
		return nil, conflict("not enough stock to remove %.2f", req.Quantity)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(err, "inventory item")
	}
	if err != nil {
		return nil, err
	}

	if item.BelowMinimum() {
		s.log.Warn("inventory item below minimum",
			zap.String("sku", item.SKU),
			zap.Float64("quantity", item.Quantity),
			zap.Float64("min_quantity", item.MinQuantity))
	}
	return item, nil
}

func (s *inventoryService) Movements(ctx context.Context, itemID uint) ([]models.InventoryMovement, error) {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.Movements(ctx, itemID)
}
