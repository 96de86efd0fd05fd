package models

import (
	"time"

	"gorm.io/gorm"
)

// LogbookEntry records one trip of a company vehicle.
type LogbookEntry struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	VehiclePlate      string         `json:"vehiclePlate" gorm:"not null;index" binding:"required"`
	EmployeeID        *uint          `json:"employeeId"`
	Employee          *Employee      `json:"employee,omitempty" binding:"-"`
	Destination       string         `json:"destination"`
	DepartureAt       time.Time      `json:"departureAt" gorm:"not null" binding:"required"`
	ArrivalAt         *time.Time     `json:"arrivalAt"`
	DepartureOdometer float64        `json:"departureOdometer" binding:"gte=0"`
	ArrivalOdometer   *float64       `json:"arrivalOdometer"`
	FuelLiters        float64        `json:"fuelLiters" binding:"gte=0"`
	Notes             string         `json:"notes" gorm:"type:text"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// Distance is the odometer difference of a closed trip, zero while open.
func (e *LogbookEntry) Distance() float64 {
	if e.ArrivalOdometer == nil || *e.ArrivalOdometer < e.DepartureOdometer {
		return 0
	}
	return *e.ArrivalOdometer - e.DepartureOdometer
}
