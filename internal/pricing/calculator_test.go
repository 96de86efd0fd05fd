package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Name: "default",
		MinimumRate: MinimumRates{
			StandardDelivery:     36,
			EmergencyDelivery:    50,
			ExclusiveVehicle:     150,
			SaturdayCollection:   70,
			SundayHoliday:        90,
			DifficultAccess:      45,
			MetropolitanRegion:   30,
			DoorToDoorInterior:   60,
			Reshipment:           50,
			NormalBiological:     90,
			InfectiousBiological: 110,
			TrackedVehicle:       120,
		},
		ExcessWeight: ExcessWeightRates{
			MinPerKg:        0.55,
			MaxPerKg:        0.9,
			BiologicalPerKg: 1.2,
			ReshipmentPerKg: 0.4,
		},
		DoorToDoor:  DoorToDoorRates{RatePerKm: 2, MaxWeight: 100},
		WaitingHour: WaitingHourRates{Fiorino: 25, Medium: 40, Large: 65},
		CustomServices: []CustomService{
			{Name: "Refrigerado", MinWeight: 20, BaseRate: 80, ExcessRate: 1.5},
		},
		MetropolitanCities: []string{"Guarulhos", "Osasco"},
	}
}

type recordingObserver struct {
	calculated int
	fallbacks  []DeliveryType
}

func (r *recordingObserver) FreightCalculated(string, DeliveryType, float64) { r.calculated++ }
func (r *recordingObserver) RateFallback(dt DeliveryType)                    { r.fallbacks = append(r.fallbacks, dt) }

func freight(table *Table, in FreightInput) float64 {
	return NewCalculator(nil, nil).Freight(table, in)
}

func TestFreight_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Table)
		in     FreightInput
		want   float64
	}{
		{
			name: "standard with excess weight",
			in:   FreightInput{Weight: 15, DeliveryType: Standard, CargoType: CargoStandard},
			want: 38.75,
		},
		{
			name: "perishable standard",
			in:   FreightInput{Weight: 15, DeliveryType: Standard, CargoType: CargoPerishable},
			want: 46.50,
		},
		{
			name: "tracked below raised limit",
			in:   FreightInput{Weight: 50, DeliveryType: Tracked, CargoType: CargoStandard},
			want: 120,
		},
		{
			name: "reshipment ignores cargo value",
			mutate: func(tb *Table) {
				tb.Insurance = InsuranceRates{Standard: 0.003}
			},
			in:   FreightInput{Weight: 5, DeliveryType: Reshipment, CargoValue: 1000},
			want: 50,
		},
		{
			name: "default discount",
			mutate: func(tb *Table) {
				tb.MinimumRate.StandardDelivery = 100
				tb.DefaultDiscount = 10
			},
			in:   FreightInput{Weight: 5, DeliveryType: Standard},
			want: 90,
		},
		{
			name: "unknown type falls back to standard",
			in:   FreightInput{Weight: 15, DeliveryType: "courierXYZ"},
			want: 38.75,
		},
		{
			name: "custom service matched case-insensitively",
			in:   FreightInput{Weight: 30, DeliveryType: "refrigerado"},
			want: 95,
		},
		{
			name: "door to door adds distance",
			in: FreightInput{
				Weight:       50,
				DeliveryType: DoorToDoorInterior,
				City:         &City{Name: "Campinas", Distance: 40},
			},
			want: 140,
		},
		{
			name: "door to door without city",
			in:   FreightInput{Weight: 50, DeliveryType: DoorToDoorInterior},
			want: 60,
		},
		{
			name: "insurance prefers standard rate",
			mutate: func(tb *Table) {
				tb.Insurance = InsuranceRates{Rate: 0.005, Standard: 0.003}
			},
			in:   FreightInput{Weight: 5, DeliveryType: Standard, CargoValue: 1000},
			want: 39,
		},
		{
			name: "insurance falls back to rate",
			mutate: func(tb *Table) {
				tb.Insurance = InsuranceRates{Rate: 0.005}
			},
			in:   FreightInput{Weight: 5, DeliveryType: Standard, CargoValue: 1000},
			want: 41,
		},
		{
			name: "multiplier rounds half away from zero",
			mutate: func(tb *Table) {
				tb.Multiplier = 1.5
			},
			in:   FreightInput{Weight: 15, DeliveryType: Standard},
			want: 58.13,
		},
		{
			name: "biological perishable keeps its own premium",
			in:   FreightInput{Weight: 10, DeliveryType: NormalBiological, CargoType: CargoPerishable},
			want: 90,
		},
		{
			name: "infectious biological uses biological excess",
			in:   FreightInput{Weight: 12, DeliveryType: InfectiousBiological},
			want: 112.4,
		},
		{
			name: "discount above 100 percent clamps to zero",
			mutate: func(tb *Table) {
				tb.DefaultDiscount = 150
			},
			in:   FreightInput{Weight: 15, DeliveryType: Standard},
			want: 0,
		},
		{
			name: "NaN weight degrades to base rate",
			in:   FreightInput{Weight: math.NaN(), DeliveryType: Standard},
			want: 36,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := sampleTable()
			if tt.mutate != nil {
				tt.mutate(table)
			}
			assert.InDelta(t, tt.want, freight(table, tt.in), 0.0001)
		})
	}
}

func TestFreight_NilTableIsZero(t *testing.T) {
	for _, dt := range append(BuiltinDeliveryTypes, "anything") {
		assert.Zero(t, freight(nil, FreightInput{Weight: 42, DeliveryType: dt, CargoValue: 500}))
	}
}

func TestFreight_NoExcessAtOrBelowLimit(t *testing.T) {
	table := sampleTable()
	for _, dt := range BuiltinDeliveryTypes {
		limit := table.rateFor(dt).weightLimit
		base := freight(table, FreightInput{Weight: 0, DeliveryType: dt})
		for _, w := range []float64{0.5, limit / 2, limit} {
			assert.InDelta(t, base, freight(table, FreightInput{Weight: w, DeliveryType: dt}), 0.0001,
				"type %s weight %v", dt, w)
		}
	}
}

func TestFreight_ExcessIsLinearAboveLimit(t *testing.T) {
	table := sampleTable()
	for _, dt := range BuiltinDeliveryTypes {
		r := table.rateFor(dt)
		at := func(extra float64) float64 {
			return freight(table, FreightInput{Weight: r.weightLimit + extra, DeliveryType: dt})
		}
		for _, extra := range []float64{1, 7, 25} {
			assert.InDelta(t, extra*r.excessPerKg, at(extra)-at(0), 0.011, "type %s extra %v", dt, extra)
		}
	}
}

func TestFreight_PerishableIsTwentyPercentMore(t *testing.T) {
	table := sampleTable()
	for _, w := range []float64{1, 10, 15, 33.3} {
		plain := freight(table, FreightInput{Weight: w, DeliveryType: Standard, CargoType: CargoStandard})
		perishable := freight(table, FreightInput{Weight: w, DeliveryType: Standard, CargoType: CargoPerishable})
		assert.InDelta(t, plain*1.2, perishable, 0.011)
	}
}

func TestFreight_ReshipmentInsuranceSuppressed(t *testing.T) {
	table := sampleTable()
	table.Insurance = InsuranceRates{Rate: 0.01, Standard: 0.02}
	base := freight(table, FreightInput{Weight: 20, DeliveryType: Reshipment})
	for _, v := range []float64{1, 1000, 1e6} {
		assert.Equal(t, base, freight(table, FreightInput{Weight: 20, DeliveryType: Reshipment, CargoValue: v}))
	}
}

func TestFreight_DiscountAndMultiplierMonotonic(t *testing.T) {
	in := FreightInput{Weight: 25, DeliveryType: Emergency, CargoValue: 300}

	prev := math.Inf(1)
	for _, d := range []float64{0, 5, 10, 25, 50, 90} {
		table := sampleTable()
		table.Insurance.Rate = 0.01
		table.DefaultDiscount = d
		got := freight(table, in)
		assert.Less(t, got, prev, "discount %v", d)
		prev = got
	}

	prev = math.Inf(-1)
	for _, m := range []float64{0.5, 1, 1.1, 2, 3.5} {
		table := sampleTable()
		table.Multiplier = m
		got := freight(table, in)
		assert.Greater(t, got, prev, "multiplier %v", m)
		prev = got
	}
}

func TestFreight_NeverNegative(t *testing.T) {
	types := append(BuiltinDeliveryTypes, "unknown", "Refrigerado")
	weights := []float64{-10, 0, 3, 150, math.Inf(1)}
	values := []float64{-500, 0, 1200, math.NaN()}
	for _, dt := range types {
		for _, w := range weights {
			for _, v := range values {
				table := sampleTable()
				table.DefaultDiscount = 120
				table.Multiplier = -3
				got := freight(table, FreightInput{Weight: w, DeliveryType: dt, CargoValue: v, CargoType: CargoPerishable})
				assert.GreaterOrEqual(t, got, 0.0)
			}
		}
	}
}

func TestFreight_ReportsFallbackToObserver(t *testing.T) {
	obs := &recordingObserver{}
	calc := NewCalculator(nil, obs)

	calc.Freight(sampleTable(), FreightInput{Weight: 1, DeliveryType: Standard})
	calc.Freight(sampleTable(), FreightInput{Weight: 1, DeliveryType: "drone"})
	calc.Freight(sampleTable(), FreightInput{Weight: 1, DeliveryType: "REFRIGERADO"})

	assert.Equal(t, 3, obs.calculated)
	require.Len(t, obs.fallbacks, 1)
	assert.Equal(t, DeliveryType("drone"), obs.fallbacks[0])
}

func TestTable_IsMetropolitan(t *testing.T) {
	table := sampleTable()
	assert.True(t, table.IsMetropolitan("guarulhos"))
	assert.True(t, table.IsMetropolitan(" Osasco "))
	assert.False(t, table.IsMetropolitan("Campinas"))

	var none *Table
	assert.False(t, none.IsMetropolitan("Osasco"))
}
