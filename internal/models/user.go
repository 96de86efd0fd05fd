package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"unique;not null" binding:"required"`
	Email        string         `json:"email" gorm:"unique;not null" binding:"required,email"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Role         string         `json:"role" gorm:"default:'operator'" binding:"omitempty,oneof=admin operator viewer"`
	IsActive     bool           `json:"isActive" gorm:"default:true"`
	LastLoginAt  *time.Time     `json:"lastLoginAt"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleOperator UserRole = "operator"
	RoleViewer   UserRole = "viewer"
)

var roleRank = map[UserRole]int{RoleViewer: 1, RoleOperator: 2, RoleAdmin: 3}

// Allows reports whether a user holding r may act where min is required.
func (r UserRole) Allows(min UserRole) bool {
	return roleRank[r] >= roleRank[min] && roleRank[r] > 0
}

type Employee struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null" binding:"required"`
	Document  string         `json:"document" gorm:"index"`
	Role      string         `json:"role" gorm:"default:'driver'" binding:"omitempty,oneof=driver operator admin"`
	Phone     string         `json:"phone"`
	IsActive  bool           `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// CompanySettings is the single row of company-wide preferences.
type CompanySettings struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	CompanyName         string    `json:"companyName"`
	Document            string    `json:"document"`
	DefaultPriceTableID *uint     `json:"defaultPriceTableId"`
	NotifyClients       bool      `json:"notifyClients"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Employee{},
		&CompanySettings{},
		&PriceTable{},
		&Client{},
		&Delivery{},
		&DeliveryPackage{},
		&Budget{},
		&BudgetPackage{},
		&Shipment{},
		&ShipmentDocument{},
		&ShipmentStatusEvent{},
		&FinancialReport{},
		&InventoryItem{},
		&InventoryMovement{},
		&LogbookEntry{},
	}
}
