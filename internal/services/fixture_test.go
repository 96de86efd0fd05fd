package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"logistics_manager/internal/appstate"
	"logistics_manager/internal/database/dbtest"
	"logistics_manager/internal/events"
	"logistics_manager/internal/models"
	"logistics_manager/internal/pricing"
	"logistics_manager/internal/redis"
	"logistics_manager/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type sentMessage struct {
	phone, body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendTextMessage(_ context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{phone: phone, body: message})
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.ShipmentStatusChanged
	err    error
}

func (f *fakePublisher) PublishShipmentStatus(_ context.Context, e events.ShipmentStatusChanged) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type countingRecorder struct {
	transitions []string
}

func (r *countingRecorder) ShipmentTransition(from, to string) {
	r.transitions = append(r.transitions, from+"->"+to)
}

type fixture struct {
	db    *gorm.DB
	mr    *miniredis.Miniredis
	rdb   *redis.Client
	store *appstate.Store

	clientRepo     repository.ClientRepository
	priceTableRepo repository.PriceTableRepository

	sender    *fakeSender
	publisher *fakePublisher
	recorder  *countingRecorder

	clients     ClientService
	priceTables PriceTableService
	deliveries  DeliveryService
	budgets     BudgetService
	shipments   ShipmentService
	financial   FinancialService
	inventory   InventoryService
	logbook     LogbookService
	employees   EmployeeService
	users       UserService
	auth        AuthService
	settings    SettingsService
	backup      BackupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb, err := redis.Initialize("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	db := dbtest.Open(t)
	log := zap.NewNop()
	calc := pricing.NewCalculator(log, nil)

	f := &fixture{
		db:             db,
		mr:             mr,
		rdb:            rdb,
		clientRepo:     repository.NewClientRepository(db),
		priceTableRepo: repository.NewPriceTableRepository(db),
		sender:         &fakeSender{},
		publisher:      &fakePublisher{},
		recorder:       &countingRecorder{},
	}
	f.store = appstate.New(rdb, repository.NewSettingsRepository(db), time.Hour, log)
	require.NoError(t, f.store.Load(context.Background()))

	defaultTable := func() *uint { return f.store.Settings().DefaultPriceTableID }
	notifyEnabled := func() bool { return f.store.Settings().NotifyClients }

	deliveryRepo := repository.NewDeliveryRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	userRepo := repository.NewUserRepository(db)

	f.clients = NewClientService(f.clientRepo, f.priceTableRepo)
	f.priceTables = NewPriceTableService(f.priceTableRepo, f.clientRepo, rdb, time.Minute, defaultTable, calc, log)
	f.deliveries = NewDeliveryService(deliveryRepo, f.clientRepo, f.priceTables, calc, log)
	f.budgets = NewBudgetService(repository.NewBudgetRepository(db), f.clientRepo, f.priceTables, f.deliveries, calc, log)
	f.shipments = NewShipmentService(shipmentRepo, f.clientRepo, f.publisher,
		NewNotificationService(f.sender, notifyEnabled, log), f.recorder, log)
	f.financial = NewFinancialService(repository.NewFinancialRepository(db), f.clientRepo, log)
	f.inventory = NewInventoryService(repository.NewInventoryRepository(db), log)
	f.logbook = NewLogbookService(repository.NewLogbookRepository(db), employeeRepo, log)
	f.employees = NewEmployeeService(employeeRepo)
	f.users = NewUserService(userRepo)
	f.auth = NewAuthService(f.users, f.store, log)
	f.settings = NewSettingsService(f.store, f.priceTableRepo)
	f.backup = NewBackupService(BackupRepositories{
		Clients:     f.clientRepo,
		PriceTables: f.priceTableRepo,
		Deliveries:  deliveryRepo,
		Shipments:   shipmentRepo,
		Employees:   employeeRepo,
	}, log)
	return f
}

// standardTable charges 36 up to 10 kg and 1.50/kg above it.
func (f *fixture) standardTable(t *testing.T) *models.PriceTable {
	t.Helper()
	table := &models.PriceTable{
		Name: "Tabela Padrao",
		MinimumRate: datatypes.NewJSONType(pricing.MinimumRates{
			StandardDelivery:  36,
			EmergencyDelivery: 60,
		}),
		ExcessWeight: datatypes.NewJSONType(pricing.ExcessWeightRates{MinPerKg: 1.5, MaxPerKg: 2}),
		WaitingHour:  datatypes.NewJSONType(pricing.WaitingHourRates{Fiorino: 40, Medium: 60, Large: 90}),
		IsActive:     true,
	}
	require.NoError(t, f.priceTables.CreatePriceTable(context.Background(), table))
	return table
}

func (f *fixture) client(t *testing.T, name string, table *models.PriceTable) *models.Client {
	t.Helper()
	client := &models.Client{Name: name, WhatsAppNumber: "11987654321", IsActive: true}
	if table != nil {
		client.PriceTableID = &table.ID
	}
	require.NoError(t, f.clients.CreateClient(context.Background(), client))
	return client
}
