package pricing

import "strings"

// DeliveryType selects which rate of a price table applies to a freight.
// Values outside the built-in set are matched against the table's custom
// services by name.
type DeliveryType string

const (
	Standard             DeliveryType = "standard"
	Emergency            DeliveryType = "emergency"
	Exclusive            DeliveryType = "exclusive"
	Saturday             DeliveryType = "saturday"
	SundayHoliday        DeliveryType = "sundayHoliday"
	DifficultAccess      DeliveryType = "difficultAccess"
	Metropolitan         DeliveryType = "metropolitanRegion"
	DoorToDoorInterior   DeliveryType = "doorToDoorInterior"
	Reshipment           DeliveryType = "reshipment"
	NormalBiological     DeliveryType = "normalBiological"
	InfectiousBiological DeliveryType = "infectiousBiological"
	Tracked              DeliveryType = "tracked"
)

// BuiltinDeliveryTypes lists every delivery type backed by a fixed rate field.
var BuiltinDeliveryTypes = []DeliveryType{
	Standard, Emergency, Exclusive, Saturday, SundayHoliday, DifficultAccess,
	Metropolitan, DoorToDoorInterior, Reshipment, NormalBiological,
	InfectiousBiological, Tracked,
}

// IsBiological reports whether the type already carries the biological premium.
func (t DeliveryType) IsBiological() bool {
	return t == NormalBiological || t == InfectiousBiological
}

func (t DeliveryType) isPremium() bool {
	switch t {
	case Emergency, Exclusive, Saturday, SundayHoliday:
		return true
	}
	return false
}

type CargoType string

const (
	CargoStandard   CargoType = "standard"
	CargoPerishable CargoType = "perishable"
)

type MinimumRates struct {
	StandardDelivery     float64 `json:"standardDelivery"`
	EmergencyDelivery    float64 `json:"emergencyDelivery"`
	ExclusiveVehicle     float64 `json:"exclusiveVehicle"`
	SaturdayCollection   float64 `json:"saturdayCollection"`
	SundayHoliday        float64 `json:"sundayHoliday"`
	DifficultAccess      float64 `json:"difficultAccess"`
	MetropolitanRegion   float64 `json:"metropolitanRegion"`
	DoorToDoorInterior   float64 `json:"doorToDoorInterior"`
	Reshipment           float64 `json:"reshipment"`
	NormalBiological     float64 `json:"normalBiological"`
	InfectiousBiological float64 `json:"infectiousBiological"`
	TrackedVehicle       float64 `json:"trackedVehicle"`
}

// ExcessWeightRates are per-kilogram rates charged above a type's weight limit.
type ExcessWeightRates struct {
	MinPerKg        float64 `json:"minPerKg"`
	MaxPerKg        float64 `json:"maxPerKg"`
	BiologicalPerKg float64 `json:"biologicalPerKg"`
	ReshipmentPerKg float64 `json:"reshipmentPerKg"`
}

type DoorToDoorRates struct {
	RatePerKm float64 `json:"ratePerKm"`
	MaxWeight float64 `json:"maxWeight"`
}

// WaitingHourRates are hourly rates for a vehicle kept waiting at a stop.
type WaitingHourRates struct {
	Fiorino float64 `json:"fiorino"`
	Medium  float64 `json:"medium"`
	Large   float64 `json:"large"`
}

type InsuranceRates struct {
	Rate     float64 `json:"rate"`
	Standard float64 `json:"standard"`
}

// CustomService is a user-defined delivery type with its own rates.
type CustomService struct {
	Name       string  `json:"name" binding:"required"`
	MinWeight  float64 `json:"minWeight" binding:"gte=0"`
	BaseRate   float64 `json:"baseRate" binding:"gte=0"`
	ExcessRate float64 `json:"excessRate" binding:"gte=0"`
}

// Table is a rate card as seen by the calculators.
type Table struct {
	Name               string
	MinimumRate        MinimumRates
	ExcessWeight       ExcessWeightRates
	DoorToDoor         DoorToDoorRates
	WaitingHour        WaitingHourRates
	Insurance          InsuranceRates
	Multiplier         float64
	DefaultDiscount    float64
	MetropolitanCities []string
	CustomServices     []CustomService
}

// IsMetropolitan reports whether city is listed as part of the metropolitan region.
func (t *Table) IsMetropolitan(city string) bool {
	if t == nil {
		return false
	}
	city = strings.TrimSpace(city)
	for _, c := range t.MetropolitanCities {
		if strings.EqualFold(strings.TrimSpace(c), city) {
			return true
		}
	}
	return false
}

// CustomService looks up a custom service by case-insensitive name.
func (t *Table) CustomService(name string) (CustomService, bool) {
	name = strings.TrimSpace(name)
	for _, s := range t.CustomServices {
		if strings.EqualFold(strings.TrimSpace(s.Name), name) {
			return s, true
		}
	}
	return CustomService{}, false
}

func (r InsuranceRates) freightRate() float64 {
	if r.Standard > 0 {
		return r.Standard
	}
	return r.Rate
}

func (r InsuranceRates) budgetRate() float64 {
	if r.Rate > 0 {
		return r.Rate
	}
	return defaultBudgetInsurance
}
