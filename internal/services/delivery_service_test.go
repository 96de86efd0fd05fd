package services

import (
	"context"
	"testing"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"
	"logistics_manager/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDelivery(clientID uint) *models.Delivery {
	return &models.Delivery{
		ClientID:     clientID,
		DeliveryType: "standard",
		Destination:  "Rua das Flores, 100",
		Packages: []models.DeliveryPackage{
			{Description: "caixa", Weight: 5, Quantity: 1},
			{Description: "envelope", Weight: 2, Quantity: 3},
		},
	}
}

func TestCreateDeliveryComputesWeightAndFreight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "ACME", f.standardTable(t))

	delivery := newDelivery(client.ID)
	require.NoError(t, f.deliveries.CreateDelivery(ctx, delivery))

	assert.NotZero(t, delivery.ID)
	assert.Regexp(t, `^ENT-[0-9A-F]{10}$`, delivery.Number)
	assert.Equal(t, 11.0, delivery.TotalWeight)
	assert.Equal(t, 37.5, delivery.FreightValue)
	assert.Equal(t, "pending", delivery.Status)
	assert.Equal(t, "standard", delivery.CargoType)

	got, err := f.deliveries.GetDelivery(ctx, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, 37.5, got.FreightValue)
	assert.Len(t, got.Packages, 2)
}

func TestCreateDeliveryUsesDefaultTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.standardTable(t)
	client := f.client(t, "Sem Tabela", nil)

	_, err := f.settings.UpdateSettings(ctx, models.CompanySettings{DefaultPriceTableID: &table.ID})
	require.NoError(t, err)

	delivery := newDelivery(client.ID)
	require.NoError(t, f.deliveries.CreateDelivery(ctx, delivery))
	assert.Equal(t, 37.5, delivery.FreightValue)
}

func TestCreateDeliveryWithoutAnyTableIsFree(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "Sem Tabela", nil)

	delivery := newDelivery(client.ID)
	require.NoError(t, f.deliveries.CreateDelivery(context.Background(), delivery))
	assert.Zero(t, delivery.FreightValue)
}

func TestCreateDeliveryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(d *models.Delivery)
		field  string
	}{
		{"no packages", func(d *models.Delivery) { d.Packages = nil }, "packages"},
		{"negative weight", func(d *models.Delivery) { d.Packages[0].Weight = -1 }, "packages[0].weight"},
		{"no delivery type", func(d *models.Delivery) { d.DeliveryType = "" }, "deliveryType"},
		{"bad cargo type", func(d *models.Delivery) { d.CargoType = "frozen" }, "cargoType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDelivery(1)
			tt.mutate(d)
			err := f.deliveries.CreateDelivery(ctx, d)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	var verr *ValidationError
	require.ErrorAs(t, f.deliveries.CreateDelivery(ctx, newDelivery(999)), &verr)
	assert.Contains(t, verr.Message, "does not exist")
}

func TestPatchDeliveryKeepsFreight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "ACME", f.standardTable(t))
	delivery := newDelivery(client.ID)
	require.NoError(t, f.deliveries.CreateDelivery(ctx, delivery))

	got, err := f.deliveries.PatchDelivery(ctx, delivery.ID, []byte(`{"notes":"portaria 2","status":"in_route"}`))
	require.NoError(t, err)
	assert.Equal(t, "portaria 2", got.Notes)
	assert.Equal(t, "in_route", got.Status)

	_, err = f.deliveries.PatchDelivery(ctx, delivery.ID, []byte(`{"freightValue":1}`))
	var ferr *schema.FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, []string{"freightValue"}, ferr.ReadOnly)

	_, err = f.deliveries.PatchDelivery(ctx, delivery.ID, []byte(`{"status":"lost"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	stored, err := f.deliveries.GetDelivery(ctx, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, 37.5, stored.FreightValue)
	assert.Equal(t, "in_route", stored.Status)
}

func TestListAndDeleteDeliveries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.client(t, "ACME", f.standardTable(t))
	first := newDelivery(client.ID)
	require.NoError(t, f.deliveries.CreateDelivery(ctx, first))
	require.NoError(t, f.deliveries.CreateDelivery(ctx, newDelivery(client.ID)))

	list, err := f.deliveries.ListDeliveries(ctx, repository.DeliveryFilter{ClientID: client.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, f.deliveries.DeleteDelivery(ctx, first.ID))
	assert.ErrorIs(t, f.deliveries.DeleteDelivery(ctx, first.ID), ErrNotFound)
	_, err = f.deliveries.GetDelivery(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
