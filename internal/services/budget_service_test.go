package services

import (
	"context"
	"testing"
	"time"

	"logistics_manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBudget(clientID uint) *models.Budget {
	return &models.Budget{
		ClientID:         clientID,
		DeliveryType:     "standard",
		MerchandiseValue: 1000,
		HasCollection:    true,
		HasDelivery:      true,
		Origin:           "Sao Paulo",
		Destination:      "Campinas",
		Packages:         []models.BudgetPackage{{Weight: 10, Quantity: 1}},
	}
}

func TestCreateBudgetComputesValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "ACME", f.standardTable(t))

	budget := newBudget(client.ID)
	require.NoError(t, f.budgets.CreateBudget(ctx, budget))

	// (36 + 10kg * 1.50 + 1000 * 1%) * 2 for collection and delivery
	assert.Equal(t, 122.0, budget.TotalValue)
	assert.Equal(t, "pending", budget.Status)
	assert.Regexp(t, `^ORC-`, budget.Number)
	require.NotNil(t, budget.ValidUntil)
	assert.WithinDuration(t, time.Now().Add(DefaultBudgetValidity), *budget.ValidUntil, time.Minute)
}

func TestCreateBudgetChargesWaitingTime(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "ACME", f.standardTable(t))

	budget := newBudget(client.ID)
	budget.WaitingHours = 2
	budget.VehicleSize = "fiorino"
	require.NoError(t, f.budgets.CreateBudget(context.Background(), budget))

	// two fiorino hours at 40 join the additional services before doubling
	assert.Equal(t, 282.0, budget.TotalValue)
}

func TestUpdateBudgetRepricesPendingOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "ACME", f.standardTable(t))
	budget := newBudget(client.ID)
	require.NoError(t, f.budgets.CreateBudget(ctx, budget))

	input := newBudget(client.ID)
	input.HasCollection = false
	input.Packages = []models.BudgetPackage{{Weight: 20, Quantity: 1}, {Weight: 0, Width: 60, Length: 50, Height: 40, Quantity: 1}}
	updated, err := f.budgets.UpdateBudget(ctx, budget.ID, input)
	require.NoError(t, err)

	// 36 + (20 + 20 cubic) * 1.50 + 10 = 106, delivery only keeps the full value
	assert.Equal(t, 106.0, updated.TotalValue)
	assert.Len(t, updated.Packages, 2)
	assert.Equal(t, budget.Number, updated.Number)

	_, err = f.budgets.ApproveBudget(ctx, budget.ID)
	require.NoError(t, err)
	_, err = f.budgets.UpdateBudget(ctx, budget.ID, input)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestBudgetLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "ACME", f.standardTable(t))
	budget := newBudget(client.ID)
	require.NoError(t, f.budgets.CreateBudget(ctx, budget))

	_, err := f.budgets.ConvertBudget(ctx, budget.ID, nil)
	assert.ErrorIs(t, err, ErrConflict, "pending budgets cannot be converted")

	approved, err := f.budgets.ApproveBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)

	delivery, err := f.budgets.ConvertBudget(ctx, budget.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, client.ID, delivery.ClientID)
	assert.Equal(t, 10.0, delivery.TotalWeight)
	assert.Equal(t, 1000.0, delivery.CargoValue)
	assert.Contains(t, delivery.Notes, budget.Number)

	converted, err := f.budgets.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.Equal(t, "converted", converted.Status)
	require.NotNil(t, converted.DeliveryID)
	assert.Equal(t, delivery.ID, *converted.DeliveryID)

	_, err = f.budgets.RejectBudget(ctx, budget.ID, "late")
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, f.budgets.DeleteBudget(ctx, budget.ID), ErrConflict)
}

func TestRejectAndExpiredBudgets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "ACME", f.standardTable(t))

	rejected := newBudget(client.ID)
	require.NoError(t, f.budgets.CreateBudget(ctx, rejected))
	got, err := f.budgets.RejectBudget(ctx, rejected.ID, "preco alto")
	require.NoError(t, err)
	assert.Equal(t, "rejected", got.Status)
	assert.Equal(t, "preco alto", got.RejectionReason)

	expired := newBudget(client.ID)
	past := time.Now().Add(-time.Hour)
	expired.ValidUntil = &past
	require.NoError(t, f.budgets.CreateBudget(ctx, expired))
	_, err = f.budgets.ApproveBudget(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, f.budgets.DeleteBudget(ctx, expired.ID))
	_, err = f.budgets.GetBudget(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
