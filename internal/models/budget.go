package models

import (
	"time"

	"logistics_manager/internal/pricing"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Budget is a freight quotation. Once approved it can be turned into a Delivery.
type Budget struct {
	ID                 uint                                          `json:"id" gorm:"primaryKey"`
	Number             string                                        `json:"number" gorm:"uniqueIndex;not null"`
	ClientID           uint                                          `json:"clientId" gorm:"not null;index" binding:"required"`
	Client             *Client                                       `json:"client,omitempty" binding:"-"`
	DeliveryType       string                                        `json:"deliveryType" gorm:"not null" binding:"required"`
	MerchandiseValue   float64                                       `json:"merchandiseValue" binding:"gte=0"`
	HasCollection      bool                                          `json:"hasCollection"`
	HasDelivery        bool                                          `json:"hasDelivery"`
	Origin             string                                        `json:"origin"`
	Destination        string                                        `json:"destination"`
	ValidUntil         *time.Time                                    `json:"validUntil"`
	Status             string                                        `json:"status" gorm:"default:'pending'"` // pending, approved, rejected, converted
	TotalValue         float64                                       `json:"totalValue"`
	Packages           []BudgetPackage                               `json:"packages" gorm:"foreignKey:BudgetID" binding:"dive"`
	AdditionalServices datatypes.JSONSlice[pricing.AdditionalService] `json:"additionalServices"`
	WaitingHours       float64                                       `json:"waitingHours" binding:"gte=0"`
	VehicleSize        string                                        `json:"vehicleSize" binding:"omitempty,oneof=fiorino medium large"`
	RejectionReason    string                                        `json:"rejectionReason"`
	DeliveryID         *uint                                         `json:"deliveryId"`
	CreatedBy          *uint                                         `json:"createdBy"`
	CreatedAt          time.Time                                     `json:"createdAt"`
	UpdatedAt          time.Time                                     `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt                                `json:"-" gorm:"index"`
}

type BudgetStatus string

const (
	BudgetPending   BudgetStatus = "pending"
	BudgetApproved  BudgetStatus = "approved"
	BudgetRejected  BudgetStatus = "rejected"
	BudgetConverted BudgetStatus = "converted"
)

type BudgetPackage struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	BudgetID uint    `json:"budgetId" gorm:"index"`
	Weight   float64 `json:"weight" binding:"gte=0"`
	Width    float64 `json:"width" binding:"gte=0"`
	Length   float64 `json:"length" binding:"gte=0"`
	Height   float64 `json:"height" binding:"gte=0"`
	Quantity int     `json:"quantity" gorm:"default:1" binding:"gte=0"`
}

func (b *Budget) Input() pricing.BudgetInput {
	pkgs := make([]pricing.PackageMeasurement, len(b.Packages))
	for i, p := range b.Packages {
		pkgs[i] = pricing.PackageMeasurement{
			Weight: p.Weight, Width: p.Width, Length: p.Length, Height: p.Height, Quantity: p.Quantity,
		}
	}
	return pricing.BudgetInput{
		DeliveryType:       pricing.DeliveryType(b.DeliveryType),
		MerchandiseValue:   b.MerchandiseValue,
		HasCollection:      b.HasCollection,
		HasDelivery:        b.HasDelivery,
		Packages:           pkgs,
		AdditionalServices: []pricing.AdditionalService(b.AdditionalServices),
	}
}
