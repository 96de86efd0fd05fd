package models

import (
	"time"

	"logistics_manager/internal/pricing"

	"gorm.io/gorm"
)

type Delivery struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	Number          string            `json:"number" gorm:"uniqueIndex;not null"`
	ClientID        uint              `json:"clientId" gorm:"not null;index" binding:"required"`
	Client          *Client           `json:"client,omitempty" binding:"-"`
	DeliveryType    string            `json:"deliveryType" gorm:"not null" binding:"required"`
	CargoType       string            `json:"cargoType" gorm:"default:'standard'" binding:"omitempty,oneof=standard perishable"`
	CargoValue      float64           `json:"cargoValue" binding:"gte=0"`
	Origin          string            `json:"origin"`
	Destination     string            `json:"destination"`
	DestinationCity string            `json:"destinationCity"`
	Distance        float64           `json:"distance" binding:"gte=0"`
	TotalWeight     float64           `json:"totalWeight"`
	FreightValue    float64           `json:"freightValue"`
	Status          string            `json:"status" gorm:"default:'pending'" binding:"omitempty,oneof=pending in_route delivered cancelled"`
	DeliveryDate    *time.Time        `json:"deliveryDate"`
	Notes           string            `json:"notes" gorm:"type:text"`
	Packages        []DeliveryPackage `json:"packages" gorm:"foreignKey:DeliveryID" binding:"required,min=1,dive"`
	CreatedBy       *uint             `json:"createdBy"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt    `json:"-" gorm:"index"`
}

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryInRoute   DeliveryStatus = "in_route"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

type DeliveryPackage struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	DeliveryID  uint    `json:"deliveryId" gorm:"index"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight" binding:"gte=0"`
	Width       float64 `json:"width" binding:"gte=0"`
	Length      float64 `json:"length" binding:"gte=0"`
	Height      float64 `json:"height" binding:"gte=0"`
	Quantity    int     `json:"quantity" gorm:"default:1" binding:"gte=0"`
}

func (p DeliveryPackage) Measurement() pricing.PackageMeasurement {
	return pricing.PackageMeasurement{
		Weight:   p.Weight,
		Width:    p.Width,
		Length:   p.Length,
		Height:   p.Height,
		Quantity: p.Quantity,
	}
}

func (d *Delivery) Measurements() []pricing.PackageMeasurement {
	out := make([]pricing.PackageMeasurement, len(d.Packages))
	for i, p := range d.Packages {
		out[i] = p.Measurement()
	}
	return out
}
