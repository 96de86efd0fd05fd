package pricing

import (
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	perishableFactor    = decimal.RequireFromString("1.2")
	roundTripFactor     = decimal.NewFromInt(2)
	collectionOnlyRatio = decimal.RequireFromString("0.7")
	hundred             = decimal.NewFromInt(100)
)

// Observer receives calculation outcomes. Implementations must be safe for
// concurrent use.
type Observer interface {
	FreightCalculated(kind string, deliveryType DeliveryType, amount float64)
	RateFallback(deliveryType DeliveryType)
}

type nopObserver struct{}

func (nopObserver) FreightCalculated(string, DeliveryType, float64) {}
func (nopObserver) RateFallback(DeliveryType) {}

// City is the destination of a door-to-door interior freight.
type City struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

type FreightInput struct {
	Weight       float64
	DeliveryType DeliveryType
	CargoType    CargoType
	CargoValue   float64
	City         *City
}

type AdditionalService struct {
	Description string  `json:"description"`
	Value       float64 `json:"value"`
}

type BudgetInput struct {
	DeliveryType       DeliveryType
	MerchandiseValue   float64
	HasCollection      bool
	HasDelivery        bool
	Packages           []PackageMeasurement
	AdditionalServices []AdditionalService
}

// Calculator prices freights and budgets against a rate table. It never
// fails: missing tables and malformed numbers degrade to zero amounts.
type Calculator struct {
	log      *zap.Logger
	observer Observer
}

func NewCalculator(log *zap.Logger, observer Observer) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Calculator{log: log.Named("pricing"), observer: observer}
}

// Freight computes the freight amount of a single delivery. The steps run in a
// fixed order; perishable, insurance, multiplier and discount do not commute.
func (c *Calculator) Freight(table *Table, in FreightInput) float64 {
	if table == nil {
		c.log.Warn("freight requested without price table", zap.String("delivery_type", string(in.DeliveryType)))
		return 0
	}

	weight := sanitize(in.Weight)
	cargoValue := sanitize(in.CargoValue)
	r := c.resolve(table, in.DeliveryType)

	total := decimal.Zero
	if r.distanceRated && in.City != nil && sanitize(in.City.Distance) > 0 {
		total = total.Add(dec(in.City.Distance).Mul(dec(table.DoorToDoor.RatePerKm)))
	}
	total = total.Add(dec(r.base))

	if weight > r.weightLimit {
		total = total.Add(dec(weight).Sub(dec(r.weightLimit)).Mul(dec(r.excessPerKg)))
	}

	if in.CargoType == CargoPerishable && !in.DeliveryType.IsBiological() {
		total = total.Mul(perishableFactor)
	}

	if cargoValue > 0 && in.DeliveryType != Reshipment {
		total = total.Add(dec(cargoValue).Mul(dec(table.Insurance.freightRate())))
	}

	total = applyMultiplier(table, total)
	total = applyDiscount(table, total)

	amount := finish(total)
	c.observer.FreightCalculated("freight", in.DeliveryType, amount)
	return amount
}

// Budget computes the value of a quotation covering several packages.
// Collection plus delivery doubles the value, collection only takes 70%.
func (c *Calculator) Budget(table *Table, in BudgetInput) float64 {
	if table == nil {
		c.log.Warn("budget requested without price table", zap.String("delivery_type", string(in.DeliveryType)))
		return 0
	}

	r := c.resolve(table, in.DeliveryType)
	total := dec(r.base)

	if weight := TotalWeight(in.Packages); weight > 0 {
		total = total.Add(dec(weight).Mul(dec(table.budgetRatePerKg(in.DeliveryType))))
	}

	if value := sanitize(in.MerchandiseValue); value > 0 {
		total = total.Add(dec(value).Mul(dec(table.Insurance.budgetRate())))
	}

	for _, s := range in.AdditionalServices {
		total = total.Add(dec(s.Value))
	}

	switch {
	case in.HasCollection && in.HasDelivery:
		total = total.Mul(roundTripFactor)
	case !in.HasDelivery:
		total = total.Mul(collectionOnlyRatio)
	}

	total = applyDiscount(table, total)

	amount := finish(total)
	c.observer.FreightCalculated("budget", in.DeliveryType, amount)
	return amount
}

func (c *Calculator) resolve(table *Table, dt DeliveryType) rate {
	r := table.rateFor(dt)
	if r.fallback {
		c.log.Warn("unknown delivery type, using standard delivery rate",
			zap.String("delivery_type", string(dt)),
			zap.String("price_table", table.Name))
		c.observer.RateFallback(dt)
	}
	return r
}

func applyMultiplier(table *Table, total decimal.Decimal) decimal.Decimal {
	if m := sanitize(table.Multiplier); m > 0 {
		return total.Mul(dec(m))
	}
	return total
}

func applyDiscount(table *Table, total decimal.Decimal) decimal.Decimal {
	if d := sanitize(table.DefaultDiscount); d > 0 {
		return total.Sub(total.Mul(dec(d).Div(hundred)))
	}
	return total
}

func finish(total decimal.Decimal) float64 {
	total = total.Round(2)
	if total.IsNegative() {
		return 0
	}
	return total.InexactFloat64()
}

// sanitize maps NaN, infinities and negatives to zero.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func dec(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
