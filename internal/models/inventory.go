package models

import (
	"time"

	"gorm.io/gorm"
)

type InventoryItem struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	SKU         string         `json:"sku" gorm:"uniqueIndex;not null" binding:"required"`
	Name        string         `json:"name" gorm:"not null" binding:"required"`
	Location    string         `json:"location"`
	Unit        string         `json:"unit" gorm:"default:'un'"`
	Quantity    float64        `json:"quantity"`
	MinQuantity float64        `json:"minQuantity" binding:"gte=0"`
	ClientID    *uint          `json:"clientId"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// BelowMinimum reports whether stock has dropped under the reorder point.
func (i *InventoryItem) BelowMinimum() bool {
	return i.MinQuantity > 0 && i.Quantity < i.MinQuantity
}

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

type InventoryMovement struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ItemID    uint      `json:"itemId" gorm:"not null;index"`
	Type      string    `json:"type" gorm:"not null"`
	Quantity  float64   `json:"quantity" gorm:"not null"`
	Note      string    `json:"note"`
	ActorID   *uint     `json:"actorId"`
	CreatedAt time.Time `json:"createdAt"`
}
