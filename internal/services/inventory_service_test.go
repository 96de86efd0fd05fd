package services

import (
	"context"
	"sync"
	"testing"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := &models.InventoryItem{SKU: " PAL-01 ", Name: "Palete PBR", Location: "A1", Quantity: 10, MinQuantity: 5}
	require.NoError(t, f.inventory.CreateItem(ctx, item))
	assert.Equal(t, "PAL-01", item.SKU)

	got, err := f.inventory.RecordMovement(ctx, item.ID, MovementRequest{Type: "out", Quantity: 7}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Quantity)
	assert.True(t, got.BelowMinimum())

	_, err = f.inventory.RecordMovement(ctx, item.ID, MovementRequest{Type: "out", Quantity: 4}, nil)
	assert.ErrorIs(t, err, ErrConflict)

	got, err = f.inventory.RecordMovement(ctx, item.ID, MovementRequest{Type: "in", Quantity: 12, Note: "compra"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.Quantity)

	movements, err := f.inventory.Movements(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2, "rejected movements are not recorded")
	assert.Equal(t, "compra", movements[0].Note)

	low, err := f.inventory.ListItems(ctx, repository.InventoryFilter{LowStock: true})
	require.NoError(t, err)
	assert.Empty(t, low)
}

func TestInventoryMovementValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := &models.InventoryItem{SKU: "CX-1", Name: "Caixa"}
	require.NoError(t, f.inventory.CreateItem(ctx, item))

	var verr *ValidationError
	_, err := f.inventory.RecordMovement(ctx, item.ID, MovementRequest{Type: "transfer", Quantity: 1}, nil)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "type")

	_, err = f.inventory.RecordMovement(ctx, item.ID, MovementRequest{Type: "in", Quantity: 0}, nil)
	require.ErrorAs(t, err, &verr)

	_, err = f.inventory.RecordMovement(ctx, 999, MovementRequest{Type: "in", Quantity: 1}, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	require.Error(t, f.inventory.CreateItem(ctx, &models.InventoryItem{SKU: "NEG", Name: "x", Quantity: -1}))
}

func TestConcurrentMovementsNeverGoNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := &models.InventoryItem{SKU: "CX-2", Name: "Caixa", Quantity: 5}
	require.NoError(t, f.inventory.CreateItem(ctx, item))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.inventory.RecordMovement(ctx, item.ID, MovementRequest{Type: "out", Quantity: 1}, nil)
		}()
	}
	wg.Wait()

	got, err := f.inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Quantity)

	movements, err := f.inventory.Movements(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 5)
}

func TestPatchItemProtectsQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := &models.InventoryItem{SKU: "CX-3", Name: "Caixa", Quantity: 2}
	require.NoError(t, f.inventory.CreateItem(ctx, item))

	got, err := f.inventory.PatchItem(ctx, item.ID, []byte(`{"location":"B2","minQuantity":1}`))
	require.NoError(t, err)
	assert.Equal(t, "B2", got.Location)

	_, err = f.inventory.PatchItem(ctx, item.ID, []byte(`{"quantity":100}`))
	assert.Error(t, err)

	require.NoError(t, f.inventory.DeleteItem(ctx, item.ID))
	_, err = f.inventory.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
