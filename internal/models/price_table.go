package models

import (
	"time"

	"logistics_manager/internal/pricing"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PriceTable is a rate card. Each rate group is stored as a JSON column so a
// table is a single row.
type PriceTable struct {
	ID                 uint                                        `json:"id" gorm:"primaryKey"`
	Name               string                                      `json:"name" gorm:"not null;uniqueIndex" binding:"required"`
	Description        string                                      `json:"description"`
	MinimumRate        datatypes.JSONType[pricing.MinimumRates]      `json:"minimumRate"`
	ExcessWeight       datatypes.JSONType[pricing.ExcessWeightRates] `json:"excessWeight"`
	DoorToDoor         datatypes.JSONType[pricing.DoorToDoorRates]   `json:"doorToDoor"`
	WaitingHour        datatypes.JSONType[pricing.WaitingHourRates]  `json:"waitingHour"`
	Insurance          datatypes.JSONType[pricing.InsuranceRates]    `json:"insurance"`
	Multiplier         float64                                     `json:"multiplier" binding:"gte=0"`
	DefaultDiscount    float64                                     `json:"defaultDiscount" binding:"gte=0,lte=100"`
	MetropolitanCities datatypes.JSONSlice[string]                 `json:"metropolitanCities"`
	CustomServices     datatypes.JSONSlice[pricing.CustomService]  `json:"customServices"`
	IsActive           bool                                        `json:"isActive" gorm:"default:true"`
	CreatedAt          time.Time                                   `json:"createdAt"`
	UpdatedAt          time.Time                                   `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt                              `json:"-" gorm:"index"`
}

// RateTable converts the stored rate card into the calculators' view of it.
func (p *PriceTable) RateTable() *pricing.Table {
	if p == nil {
		return nil
	}
	return &pricing.Table{
		Name:               p.Name,
		MinimumRate:        p.MinimumRate.Data(),
		ExcessWeight:       p.ExcessWeight.Data(),
		DoorToDoor:         p.DoorToDoor.Data(),
		WaitingHour:        p.WaitingHour.Data(),
		Insurance:          p.Insurance.Data(),
		Multiplier:         p.Multiplier,
		DefaultDiscount:    p.DefaultDiscount,
		MetropolitanCities: []string(p.MetropolitanCities),
		CustomServices:     []pricing.CustomService(p.CustomServices),
	}
}
