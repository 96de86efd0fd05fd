package repository

import (
	"context"
	"testing"
	"time"

	"logistics_manager/internal/database/dbtest"
	"logistics_manager/internal/models"
	"logistics_manager/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func seedClient(t *testing.T, db *gorm.DB, name string) *models.Client {
	t.Helper()
	client := &models.Client{Name: name, IsActive: true}
	require.NoError(t, NewClientRepository(db).Create(context.Background(), client))
	return client
}

func TestClientRepositoryCRUD(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewClientRepository(db)
	ctx := context.Background()

	table := &models.PriceTable{
		Name:        "Default",
		MinimumRate: datatypes.NewJSONType(pricing.MinimumRates{StandardDelivery: 36}),
	}
	require.NoError(t, NewPriceTableRepository(db).Create(ctx, table))

	client := &models.Client{Name: "ACME Logistica", Email: "ops@acme.test", PriceTableID: &table.ID}
	require.NoError(t, repo.Create(ctx, client))
	seedClient(t, db, "Zeta Farma")

	got, err := repo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PriceTable)
	assert.Equal(t, 36.0, got.PriceTable.MinimumRate.Data().StandardDelivery)

	list, err := repo.List(ctx, ClientFilter{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ACME Logistica", list[0].Name)

	got.Phone = "11 4000-0000"
	require.NoError(t, repo.UpdateColumns(ctx, got, []string{"phone"}))
	again, err := repo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "11 4000-0000", again.Phone)

	require.NoError(t, repo.Delete(ctx, client.ID))
	_, err = repo.GetByID(ctx, client.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, client.ID), gorm.ErrRecordNotFound)
}

func TestDeliveryRepositoryStoresPackages(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewDeliveryRepository(db)
	ctx := context.Background()
	client := seedClient(t, db, "ACME")

	delivery := &models.Delivery{
		Number:       "ENT-1",
		ClientID:     client.ID,
		DeliveryType: "standard",
		FreightValue: 41.5,
		Packages: []models.DeliveryPackage{
			{Weight: 5, Quantity: 1},
			{Weight: 2, Quantity: 3},
		},
	}
	require.NoError(t, repo.Create(ctx, delivery))

	got, err := repo.GetByID(ctx, delivery.ID)
	require.NoError(t, err)
	assert.Len(t, got.Packages, 2)
	assert.Equal(t, "ACME", got.Client.Name)
	assert.Equal(t, string(models.DeliveryPending), got.Status)

	list, err := repo.List(ctx, DeliveryFilter{ClientID: client.ID, Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = repo.List(ctx, DeliveryFilter{Period: Period{From: time.Now().Add(time.Hour)}})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFinancialRepositorySumDeliveries(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	deliveries := NewDeliveryRepository(db)
	client := seedClient(t, db, "ACME")
	other := seedClient(t, db, "Other")

	for i, d := range []models.Delivery{
		{Number: "A", ClientID: client.ID, TotalWeight: 10, FreightValue: 100, CargoValue: 1000},
		{Number: "B", ClientID: client.ID, TotalWeight: 5, FreightValue: 50.5, CargoValue: 0},
		{Number: "C", ClientID: client.ID, TotalWeight: 99, FreightValue: 999, Status: string(models.DeliveryCancelled)},
		{Number: "D", ClientID: other.ID, TotalWeight: 1, FreightValue: 1},
	} {
		d := d
		d.DeliveryType = "standard"
		require.NoError(t, deliveries.Create(ctx, &d), "delivery %d", i)
	}

	totals, err := NewFinancialRepository(db).SumDeliveries(ctx, client.ID, Period{})
	require.NoError(t, err)
	assert.Equal(t, DeliveryTotals{Count: 2, Weight: 15, Freight: 150.5, CargoValue: 1000}, totals)

	totals, err = NewFinancialRepository(db).SumDeliveries(ctx, client.ID, Period{To: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Zero(t, totals.Count)
}

func TestInventoryApplyMovement(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewInventoryRepository(db)
	ctx := context.Background()

	item := &models.InventoryItem{SKU: "BOX-1", Name: "Caixa", Quantity: 10, MinQuantity: 5}
	require.NoError(t, repo.Create(ctx, item))

	updated, err := repo.ApplyMovement(ctx, &models.InventoryMovement{ItemID: item.ID, Type: "out", Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.Quantity)
	assert.True(t, updated.BelowMinimum())

	_, err = repo.ApplyMovement(ctx, &models.InventoryMovement{ItemID: item.ID, Type: "out", Quantity: 4})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	updated, err = repo.ApplyMovement(ctx, &models.InventoryMovement{ItemID: item.ID, Type: "in", Quantity: 2.5})
	require.NoError(t, err)
	assert.Equal(t, 5.5, updated.Quantity)

	movements, err := repo.Movements(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 2, "rejected movement is not recorded")

	low, err := repo.List(ctx, InventoryFilter{LowStock: true})
	require.NoError(t, err)
	assert.Empty(t, low)

	_, err = repo.ApplyMovement(ctx, &models.InventoryMovement{ItemID: 999, Type: "in", Quantity: 1})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestShipmentApplyTransition(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewShipmentRepository(db)
	ctx := context.Background()
	client := seedClient(t, db, "ACME")

	shipment := &models.Shipment{
		TrackingNumber: "TRK-1",
		ClientID:       client.ID,
		Origin:         "Sao Paulo",
		Destination:    "Campinas",
		Documents:      []models.ShipmentDocument{{Number: "NF-100", Weight: 3, Value: 250}},
	}
	require.NoError(t, repo.Create(ctx, shipment))

	now := time.Now()
	shipment.Status = "retained"
	shipment.RetentionReason = "address not found"
	shipment.RetainedAt = &now
	event := &models.ShipmentStatusEvent{FromStatus: "in_transit", ToStatus: "retained"}
	require.NoError(t, repo.ApplyTransition(ctx, shipment, []string{"status", "retention_reason", "retained_at"}, event))

	got, err := repo.GetByID(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, "retained", got.Status)
	assert.Equal(t, "address not found", got.RetentionReason)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "retained", got.Events[0].ToStatus)
	assert.Len(t, got.Documents, 1)

	missing := &models.Shipment{ID: 404, Status: "delivered"}
	err = repo.ApplyTransition(ctx, missing, []string{"status"}, &models.ShipmentStatusEvent{ToStatus: "delivered"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	events, err := repo.Events(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestLogbookLastOdometer(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLogbookRepository(db)
	ctx := context.Background()

	reading, err := repo.LastOdometer(ctx, "ABC1D23")
	require.NoError(t, err)
	assert.Zero(t, reading)

	arrival := 1250.0
	require.NoError(t, repo.Create(ctx, &models.LogbookEntry{
		VehiclePlate: "ABC1D23", DepartureAt: time.Now().Add(-2 * time.Hour),
		DepartureOdometer: 1200, ArrivalOdometer: &arrival,
	}))
	require.NoError(t, repo.Create(ctx, &models.LogbookEntry{
		VehiclePlate: "ABC1D23", DepartureAt: time.Now(), DepartureOdometer: 1250,
	}))

	reading, err = repo.LastOdometer(ctx, "ABC1D23")
	require.NoError(t, err)
	assert.Equal(t, 1250.0, reading)

	entries, err := repo.List(ctx, LogbookFilter{VehiclePlate: "ABC1D23"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 50.0, entries[1].Distance())
}

func TestSettingsRepositorySaveKeepsSingleRow(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Save(ctx, &models.CompanySettings{CompanyName: "First"}))
	require.NoError(t, repo.Save(ctx, &models.CompanySettings{CompanyName: "Second"}))

	var count int64
	require.NoError(t, db.Model(&models.CompanySettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.CompanyName)
}

func TestUserRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "ana", Email: "ana@example.com", PasswordHash: "x", Role: "admin"}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Nil(t, got.LastLoginAt)

	require.NoError(t, repo.TouchLogin(ctx, user.ID, time.Now()))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateKeepsInactiveFlag(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	inactive := &models.Client{Name: "Inativo", IsActive: false}
	require.NoError(t, NewClientRepository(db).Create(ctx, inactive))
	active := seedClient(t, db, "Ativo")
	assert.False(t, inactive.IsActive)

	list, err := NewClientRepository(db).List(ctx, ClientFilter{Active: new(bool)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, inactive.ID, list[0].ID)
	got, err := NewClientRepository(db).GetByID(ctx, active.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	employees := NewEmployeeRepository(db)
	require.NoError(t, employees.Create(ctx, &models.Employee{Name: "Ex-motorista"}))
	actives, err := employees.List(ctx, "", true)
	require.NoError(t, err)
	assert.Empty(t, actives)

	tables := NewPriceTableRepository(db)
	table := &models.PriceTable{Name: "Antiga"}
	require.NoError(t, tables.Create(ctx, table))
	storedTable, err := tables.GetByID(ctx, table.ID)
	require.NoError(t, err)
	assert.False(t, storedTable.IsActive)

	users := NewUserRepository(db)
	user := &models.User{Username: "bloqueado", Email: "b@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, user))
	storedUser, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, storedUser.IsActive)
}
