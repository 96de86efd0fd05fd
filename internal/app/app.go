// Package app builds the repositories and services behind the HTTP API.
package app

import (
	"time"

	"logistics_manager/internal/appstate"
	"logistics_manager/internal/events"
	"logistics_manager/internal/handlers"
	"logistics_manager/internal/pricing"
	"logistics_manager/internal/redis"
	"logistics_manager/internal/repository"
	"logistics_manager/internal/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	DB            *gorm.DB
	Redis         *redis.Client
	Store         *appstate.Store
	Publisher     events.Publisher
	Sender        services.MessageSender
	Observer      pricing.Observer
	Recorder      services.TransitionRecorder
	PriceTableTTL time.Duration
	Log           *zap.Logger
}

// Build wires every service. Sender and Publisher may be nil.
func Build(d Deps) handlers.Services {
	calc := pricing.NewCalculator(d.Log, d.Observer)

	userRepo := repository.NewUserRepository(d.DB)
	clientRepo := repository.NewClientRepository(d.DB)
	priceTableRepo := repository.NewPriceTableRepository(d.DB)
	deliveryRepo := repository.NewDeliveryRepository(d.DB)
	shipmentRepo := repository.NewShipmentRepository(d.DB)
	employeeRepo := repository.NewEmployeeRepository(d.DB)

	defaultTable := func() *uint { return d.Store.Settings().DefaultPriceTableID }
	notifyEnabled := func() bool { return d.Store.Settings().NotifyClients }

	users := services.NewUserService(userRepo)
	priceTables := services.NewPriceTableService(priceTableRepo, clientRepo, d.Redis, d.PriceTableTTL, defaultTable, calc, d.Log)
	deliveries := services.NewDeliveryService(deliveryRepo, clientRepo, priceTables, calc, d.Log)

	return handlers.Services{
		Auth:        services.NewAuthService(users, d.Store, d.Log),
		Users:       users,
		Clients:     services.NewClientService(clientRepo, priceTableRepo),
		PriceTables: priceTables,
		Deliveries:  deliveries,
		Budgets:     services.NewBudgetService(repository.NewBudgetRepository(d.DB), clientRepo, priceTables, deliveries, calc, d.Log),
		Shipments: services.NewShipmentService(shipmentRepo, clientRepo, d.Publisher,
			services.NewNotificationService(d.Sender, notifyEnabled, d.Log), d.Recorder, d.Log),
		Financial: services.NewFinancialService(repository.NewFinancialRepository(d.DB), clientRepo, d.Log),
		Inventory: services.NewInventoryService(repository.NewInventoryRepository(d.DB), d.Log),
		Logbook:   services.NewLogbookService(repository.NewLogbookRepository(d.DB), employeeRepo, d.Log),
		Employees: services.NewEmployeeService(employeeRepo),
		Settings:  services.NewSettingsService(d.Store, priceTableRepo),
		Backup: services.NewBackupService(services.BackupRepositories{
			Clients:     clientRepo,
			PriceTables: priceTableRepo,
			Deliveries:  deliveryRepo,
			Shipments:   shipmentRepo,
			Employees:   employeeRepo,
		}, d.Log),
	}
}
