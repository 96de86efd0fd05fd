package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackageMeasurement_Weights(t *testing.T) {
	box := PackageMeasurement{Weight: 1, Width: 60, Length: 50, Height: 40}
	assert.InDelta(t, 20, box.CubicWeight(), 1e-9)
	assert.InDelta(t, 20, box.EffectiveWeight(), 1e-9)

	dense := PackageMeasurement{Weight: 12, Width: 10, Length: 10, Height: 10}
	assert.InDelta(t, 12, dense.EffectiveWeight(), 1e-9)

	flat := PackageMeasurement{Weight: 3}
	assert.Zero(t, flat.CubicWeight())
	assert.Equal(t, 3.0, flat.EffectiveWeight())
}

func TestTotalWeight(t *testing.T) {
	assert.Zero(t, TotalWeight(nil))
	assert.InDelta(t, 30, TotalWeight(budgetPackages()), 1e-9)

	// quantity defaults to one
	assert.InDelta(t, 7, TotalWeight([]PackageMeasurement{{Weight: 7, Quantity: 0}}), 1e-9)
	assert.InDelta(t, 21, TotalWeight([]PackageMeasurement{{Weight: 7, Quantity: 3}}), 1e-9)
}
