package pricing

const (
	defaultWeightLimit     = 10.0
	extendedWeightLimit    = 100.0
	defaultBudgetInsurance = 0.01
)

// rate is the outcome of resolving a delivery type against a table.
type rate struct {
	base          float64
	excessPerKg   float64
	weightLimit   float64
	distanceRated bool
	fallback      bool
}

func (t *Table) rateFor(dt DeliveryType) rate {
	m, ex := t.MinimumRate, t.ExcessWeight
	r := rate{weightLimit: defaultWeightLimit}

	switch dt {
	case Standard:
		r.base, r.excessPerKg = m.StandardDelivery, ex.MinPerKg
	case Emergency:
		r.base, r.excessPerKg = m.EmergencyDelivery, ex.MaxPerKg
	case Exclusive:
		r.base, r.excessPerKg = m.ExclusiveVehicle, ex.MaxPerKg
	case Saturday:
		r.base, r.excessPerKg = m.SaturdayCollection, ex.MaxPerKg
	case SundayHoliday:
		r.base, r.excessPerKg = m.SundayHoliday, ex.MaxPerKg
	case DifficultAccess:
		r.base, r.excessPerKg = m.DifficultAccess, ex.MaxPerKg
	case Metropolitan:
		r.base, r.excessPerKg = m.MetropolitanRegion, ex.MinPerKg
	case DoorToDoorInterior:
		r.base, r.excessPerKg = m.DoorToDoorInterior, ex.MaxPerKg
		r.weightLimit = extendedWeightLimit
		r.distanceRated = true
	case Reshipment:
		r.base, r.excessPerKg = m.Reshipment, ex.ReshipmentPerKg
	case NormalBiological:
		r.base, r.excessPerKg = m.NormalBiological, ex.BiologicalPerKg
	case InfectiousBiological:
		r.base, r.excessPerKg = m.InfectiousBiological, ex.BiologicalPerKg
	case Tracked:
		r.base, r.excessPerKg = m.TrackedVehicle, ex.MaxPerKg
		r.weightLimit = extendedWeightLimit
	default:
		if svc, ok := t.CustomService(string(dt)); ok {
			r.base, r.excessPerKg, r.weightLimit = svc.BaseRate, svc.ExcessRate, svc.MinWeight
			break
		}
		r.base, r.excessPerKg = m.StandardDelivery, ex.MinPerKg
		r.fallback = true
	}
	return r
}

// budgetRatePerKg is the per-kilogram rate a budget applies to its whole weight.
func (t *Table) budgetRatePerKg(dt DeliveryType) float64 {
	switch {
	case dt.isPremium():
		return t.ExcessWeight.MaxPerKg
	case dt.IsBiological():
		return t.ExcessWeight.BiologicalPerKg
	default:
		return t.ExcessWeight.MinPerKg
	}
}
