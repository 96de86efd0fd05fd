package models

import (
	"time"

	"gorm.io/gorm"
)

type Shipment struct {
	ID              uint                  `json:"id" gorm:"primaryKey"`
	TrackingNumber  string                `json:"trackingNumber" gorm:"uniqueIndex;not null"`
	ClientID        uint                  `json:"clientId" gorm:"not null;index" binding:"required"`
	Client          *Client               `json:"client,omitempty" binding:"-"`
	DeliveryID      *uint                 `json:"deliveryId"`
	Origin          string                `json:"origin" binding:"required"`
	Destination     string                `json:"destination" binding:"required"`
	Carrier         string                `json:"carrier"`
	Status          string                `json:"status" gorm:"default:'in_transit';index"`
	RetentionReason string                `json:"retentionReason"`
	RetainedAt      *time.Time            `json:"retainedAt"`
	ReceiverName    string                `json:"receiverName"`
	DeliveryDate    *time.Time            `json:"deliveryDate"`
	DeliveryTime    string                `json:"deliveryTime"`
	DeliveredAt     *time.Time            `json:"deliveredAt"`
	Documents       []ShipmentDocument    `json:"documents" gorm:"foreignKey:ShipmentID" binding:"dive"`
	Events          []ShipmentStatusEvent `json:"events,omitempty" gorm:"foreignKey:ShipmentID" binding:"-"`
	CreatedBy       *uint                 `json:"createdBy"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt        `json:"-" gorm:"index"`
}

// ShipmentDocument is a fiscal document (invoice, transport receipt) travelling with a shipment.
type ShipmentDocument struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	ShipmentID uint    `json:"shipmentId" gorm:"index"`
	Kind       string  `json:"kind" gorm:"default:'invoice'"`
	Number     string  `json:"number" binding:"required"`
	Weight     float64 `json:"weight" binding:"gte=0"`
	Value      float64 `json:"value" binding:"gte=0"`
}

// ShipmentStatusEvent is one applied status change. Rows are only ever appended.
type ShipmentStatusEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ShipmentID uint      `json:"shipmentId" gorm:"not null;index"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus" gorm:"not null"`
	ActorID    *uint     `json:"actorId"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"createdAt"`
}
