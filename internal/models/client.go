package models

import (
	"time"

	"gorm.io/gorm"
)

type Client struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"not null" binding:"required"`
	Document       string         `json:"document" gorm:"index"`
	Email          string         `json:"email" binding:"omitempty,email"`
	Phone          string         `json:"phone"`
	WhatsAppNumber string         `json:"whatsappNumber" gorm:"column:whats_app_number"`
	Address        string         `json:"address"`
	City           string         `json:"city"`
	State          string         `json:"state" binding:"omitempty,len=2"`
	PriceTableID   *uint          `json:"priceTableId"`
	PriceTable     *PriceTable    `json:"priceTable,omitempty" binding:"-"`
	IsActive       bool           `json:"isActive" gorm:"default:true"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
