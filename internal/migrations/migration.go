package migrations

import (
	"context"
	"errors"
	"fmt"

	"logistics_manager/internal/database"
	"logistics_manager/internal/models"
	"logistics_manager/internal/pricing"
	"logistics_manager/internal/repository"
	"logistics_manager/internal/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AdminUsername         = "admin"
	DefaultPriceTableName = "Tabela Padrao"
)

type Options struct {
	// AdminPassword is used when the admin user has to be created. Empty
	// generates a random one, which is logged once.
	AdminPassword string
	AdminEmail    string
	CompanyName   string
}

// Run migrates every table and creates the default data. Re-running it only
// fills in what is missing.
func Run(ctx context.Context, db *gorm.DB, opts Options, log *zap.Logger) error {
	log = log.Named("migrations")
	log.Info("running database migrations")
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := createDefaultData(ctx, db, opts, log); err != nil {
		return fmt.Errorf("failed to create default data: %w", err)
	}
	log.Info("database migrations completed")
	return nil
}

// Reset drops every table and runs the migrations from scratch.
func Reset(ctx context.Context, db *gorm.DB, opts Options, log *zap.Logger) error {
	all := models.All()
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if err := db.WithContext(ctx).Migrator().DropTable(all...); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	log.Warn("all tables dropped")
	return Run(ctx, db, opts, log)
}

func createDefaultData(ctx context.Context, db *gorm.DB, opts Options, log *zap.Logger) error {
	if err := createAdmin(ctx, db, opts, log); err != nil {
		return err
	}
	table, err := createDefaultPriceTable(ctx, db, log)
	if err != nil {
		return err
	}
	return createSettings(ctx, db, table, opts.CompanyName, log)
}

func createAdmin(ctx context.Context, db *gorm.DB, opts Options, log *zap.Logger) error {
	users := services.NewUserService(repository.NewUserRepository(db))
	if _, err := users.GetUserByUsername(ctx, AdminUsername); err == nil {
		log.Info("admin user already exists")
		return nil
	} else if !errors.Is(err, services.ErrNotFound) {
		return err
	}

	password := opts.AdminPassword
	generated := password == ""
	if generated {
		password = uuid.NewString()
	}
	email := opts.AdminEmail
	if email == "" {
		email = "admin@example.com"
	}
	admin := &models.User{
		Username: AdminUsername,
		Email:    email,
		Role:     string(models.RoleAdmin),
		IsActive: true,
	}
	if err := users.CreateUser(ctx, admin, password); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	if generated {
		log.Warn("admin user created with a generated password, change it after the first login",
			zap.String("username", AdminUsername), zap.String("password", password))
	} else {
		log.Info("admin user created", zap.String("username", AdminUsername))
	}
	return nil
}

func createDefaultPriceTable(ctx context.Context, db *gorm.DB, log *zap.Logger) (*models.PriceTable, error) {
	var table models.PriceTable
	err := db.WithContext(ctx).Where("name = ?", DefaultPriceTableName).First(&table).Error
	if err == nil {
		return &table, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	table = models.PriceTable{
		Name:        DefaultPriceTableName,
		Description: "Tabela criada na instalacao",
		MinimumRate: datatypes.NewJSONType(pricing.MinimumRates{
			StandardDelivery:  36,
			EmergencyDelivery: 60,
		}),
		ExcessWeight: datatypes.NewJSONType(pricing.ExcessWeightRates{MinPerKg: 1.5, MaxPerKg: 2}),
		WaitingHour:  datatypes.NewJSONType(pricing.WaitingHourRates{Fiorino: 40, Medium: 60, Large: 90}),
		Multiplier:   1,
		IsActive:     true,
	}
	if err := repository.NewPriceTableRepository(db).Create(ctx, &table); err != nil {
		return nil, fmt.Errorf("failed to create default price table: %w", err)
	}
	log.Info("default price table created", zap.Uint("price_table_id", table.ID))
	return &table, nil
}

func createSettings(ctx context.Context, db *gorm.DB, table *models.PriceTable, company string, log *zap.Logger) error {
	repo := repository.NewSettingsRepository(db)
	settings, err := repo.Get(ctx)
	switch {
	case err == nil:
		if settings.DefaultPriceTableID != nil {
			return nil
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		settings = &models.CompanySettings{CompanyName: company}
	default:
		return err
	}
	settings.DefaultPriceTableID = &table.ID
	if err := repo.Save(ctx, settings); err != nil {
		return fmt.Errorf("failed to save company settings: %w", err)
	}
	log.Info("company settings saved", zap.Uint("default_price_table_id", table.ID))
	return nil
}
