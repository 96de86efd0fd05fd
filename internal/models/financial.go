package models

import (
	"time"

	"gorm.io/gorm"
)

// FinancialReport aggregates a client's deliveries over a billing period.
type FinancialReport struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	ClientID        uint           `json:"clientId" gorm:"not null;index"`
	Client          *Client        `json:"client,omitempty" binding:"-"`
	PeriodStart     time.Time      `json:"periodStart" gorm:"not null"`
	PeriodEnd       time.Time      `json:"periodEnd" gorm:"not null"`
	DeliveryCount   int            `json:"deliveryCount"`
	TotalWeight     float64        `json:"totalWeight"`
	TotalFreight    float64        `json:"totalFreight"`
	TotalCargoValue float64        `json:"totalCargoValue"`
	Status          string         `json:"status" gorm:"default:'open'"` // open, closed, paid
	Notes           string         `json:"notes" gorm:"type:text"`
	GeneratedAt     time.Time      `json:"generatedAt"`
	ClosedAt        *time.Time     `json:"closedAt"`
	PaidAt          *time.Time     `json:"paidAt"`
	CreatedBy       *uint          `json:"createdBy"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

type ReportStatus string

const (
	ReportOpen   ReportStatus = "open"
	ReportClosed ReportStatus = "closed"
	ReportPaid   ReportStatus = "paid"
)

// CanMoveTo allows open -> closed -> paid, and reopening a closed report.
func (s ReportStatus) CanMoveTo(next ReportStatus) bool {
	switch s {
	case ReportOpen:
		return next == ReportClosed
	case ReportClosed:
		return next == ReportPaid || next == ReportOpen
	}
	return false
}
