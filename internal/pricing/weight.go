package pricing

import "github.com/shopspring/decimal"

// CubicDivisor converts cm³ into cubic kilograms.
const CubicDivisor = 6000

// PackageMeasurement is one physical item of a shipment. Dimensions are in
// centimetres, weight in kilograms.
type PackageMeasurement struct {
	Weight   float64 `json:"weight"`
	Width    float64 `json:"width"`
	Length   float64 `json:"length"`
	Height   float64 `json:"height"`
	Quantity int     `json:"quantity"`
}

func (p PackageMeasurement) CubicWeight() float64 {
	v := dec(sanitize(p.Width)).Mul(dec(sanitize(p.Length))).Mul(dec(sanitize(p.Height)))
	return v.Div(decimal.NewFromInt(CubicDivisor)).InexactFloat64()
}

// EffectiveWeight is the greater of the real and the cubic weight.
func (p PackageMeasurement) EffectiveWeight() float64 {
	actual := sanitize(p.Weight)
	if cubic := p.CubicWeight(); cubic > actual {
		return cubic
	}
	return actual
}

func (p PackageMeasurement) quantity() int64 {
	if p.Quantity <= 0 {
		return 1
	}
	return int64(p.Quantity)
}

// TotalWeight sums the effective weight of every package times its quantity.
func TotalWeight(pkgs []PackageMeasurement) float64 {
	total := decimal.Zero
	for _, p := range pkgs {
		total = total.Add(dec(p.EffectiveWeight()).Mul(decimal.NewFromInt(p.quantity())))
	}
	return total.InexactFloat64()
}
