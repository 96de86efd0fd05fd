package pricing

import "strings"

type VehicleSize string

const (
	VehicleFiorino VehicleSize = "fiorino"
	VehicleMedium  VehicleSize = "medium"
	VehicleLarge   VehicleSize = "large"
)

// WaitingHourCharge prices the time a vehicle of the given size was held at a
// stop. Unknown sizes are charged at the fiorino rate.
func WaitingHourCharge(table *Table, vehicle VehicleSize, hours float64) float64 {
	if table == nil || sanitize(hours) == 0 {
		return 0
	}
	var perHour float64
	switch VehicleSize(strings.ToLower(string(vehicle))) {
	case VehicleMedium:
		perHour = table.WaitingHour.Medium
	case VehicleLarge:
		perHour = table.WaitingHour.Large
	default:
		perHour = table.WaitingHour.Fiorino
	}
	return finish(dec(hours).Mul(dec(perHour)))
}
