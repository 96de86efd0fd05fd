package repository

import (
	"context"
	"errors"

	"logistics_manager/internal/models"

	"gorm.io/gorm"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type InventoryFilter struct {
	Search   string
	Location string
	LowStock bool
}

type InventoryRepository interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	GetByID(ctx context.Context, id uint) (*models.InventoryItem, error)
	List(ctx context.Context, filter InventoryFilter) ([]models.InventoryItem, error)
	Update(ctx context.Context, item *models.InventoryItem) error
	UpdateColumns(ctx context.Context, item *models.InventoryItem, columns []string) error
	Delete(ctx context.Context, id uint) error
	ApplyMovement(ctx context.Context, movement *models.InventoryMovement) (*models.InventoryItem, error)
	Movements(ctx context.Context, itemID uint) ([]models.InventoryMovement, error)
}

type inventoryRepository struct {
	crud[models.InventoryItem]
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{crud[models.InventoryItem]{db: db}}
}

func (r *inventoryRepository) GetByID(ctx context.Context, id uint) (*models.InventoryItem, error) {
	return r.first(ctx, id)
}

func (r *inventoryRepository) List(ctx context.Context, filter InventoryFilter) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	q := r.db.WithContext(ctx).Order("name")
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR sku LIKE ?", like, like)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	if filter.LowStock {
		q = q.Where("min_quantity > 0 AND quantity < min_quantity")
	}
	err := q.Find(&items).Error
	return items, err
}

// ApplyMovement adjusts the item balance and records the movement atomically.
// An outgoing movement larger than the balance fails with ErrInsufficientStock.
func (r *inventoryRepository) ApplyMovement(ctx context.Context, movement *models.InventoryMovement) (*models.InventoryItem, error) {
	delta := movement.Quantity
	if movement.Type == string(models.MovementOut) {
		delta = -delta
	}

	var item models.InventoryItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, movement.ItemID).Error; err != nil {
			return err
		}
		res := tx.Model(&models.InventoryItem{}).
			Where("id = ? AND quantity + ? >= 0", item.ID, delta).
			Update("quantity", gorm.Expr("quantity + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		if err := tx.Create(movement).Error; err != nil {
			return err
		}
		return tx.First(&item, item.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) Movements(ctx context.Context, itemID uint) ([]models.InventoryMovement, error) {
	var movements []models.InventoryMovement
	err := r.db.WithContext(ctx).Where("item_id = ?", itemID).Order("id DESC").Find(&movements).Error
	return movements, err
}
