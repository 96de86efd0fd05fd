package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"logistics_manager/internal/models"
	"logistics_manager/internal/pricing"
	"logistics_manager/internal/redis"
	"logistics_manager/internal/repository"

	"go.uber.org/zap"
)

// PriceTableCache keeps recently read price tables out of the database.
type PriceTableCache interface {
	CachePriceTable(ctx context.Context, id uint, table interface{}, ttl time.Duration) error
	GetCachedPriceTable(ctx context.Context, id uint, dest interface{}) error
	InvalidatePriceTable(ctx context.Context, id uint) error
}

type QuoteRequest struct {
	PriceTableID *uint                        `json:"priceTableId"`
	ClientID     *uint                        `json:"clientId"`
	DeliveryType string                       `json:"deliveryType" binding:"required"`
	CargoType    string                       `json:"cargoType" binding:"omitempty,oneof=standard perishable"`
	CargoValue   float64                      `json:"cargoValue"`
	Weight       float64                      `json:"weight"`
	Packages     []pricing.PackageMeasurement `json:"packages"`
	City         string                       `json:"city"`
	Distance     float64                      `json:"distance"`
}

type Quote struct {
	PriceTableID uint    `json:"priceTableId"`
	DeliveryType string  `json:"deliveryType"`
	Weight       float64 `json:"weight"`
	Freight      float64 `json:"freight"`
	Metropolitan bool    `json:"metropolitan"`
}

type PriceTableService interface {
	CreatePriceTable(ctx context.Context, table *models.PriceTable) error
	GetPriceTable(ctx context.Context, id uint) (*models.PriceTable, error)
	ListPriceTables(ctx context.Context, activeOnly bool) ([]models.PriceTable, error)
	PatchPriceTable(ctx context.Context, id uint, body []byte) (*models.PriceTable, error)
	DeletePriceTable(ctx context.Context, id uint) error
	TableForClient(ctx context.Context, client *models.Client) (*models.PriceTable, error)
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

type priceTableService struct {
	repo         repository.PriceTableRepository
	clientRepo   repository.ClientRepository
	cache        PriceTableCache
	ttl          time.Duration
	defaultTable func() *uint
	calc         *pricing.Calculator
	log          *zap.Logger
}

// NewPriceTableService wires the service. cache and defaultTable may be nil.
func NewPriceTableService(
	repo repository.PriceTableRepository,
	clientRepo repository.ClientRepository,
	cache PriceTableCache,
	ttl time.Duration,
	defaultTable func() *uint,
	calc *pricing.Calculator,
	log *zap.Logger,
) PriceTableService {
	if defaultTable == nil {
		defaultTable = func() *uint { return nil }
	}
	return &priceTableService{
		repo:         repo,
		clientRepo:   clientRepo,
		cache:        cache,
		ttl:          ttl,
		defaultTable: defaultTable,
		calc:         calc,
		log:          log.Named("price_tables"),
	}
}

// checkCustomServices rejects unnamed, duplicated or built-in-shadowing services.
func checkCustomServices(table *models.PriceTable) error {
	seen := map[string]bool{}
	for _, dt := range pricing.BuiltinDeliveryTypes {
		seen[strings.ToLower(string(dt))] = true
	}
	for _, cs := range table.CustomServices {
		name := strings.ToLower(strings.TrimSpace(cs.Name))
		if name == "" {
			return invalid("custom service name is required")
		}
		if seen[name] {
			return invalid("custom service %q clashes with another delivery type", cs.Name)
		}
		if cs.MinWeight < 0 || cs.BaseRate < 0 || cs.ExcessRate < 0 {
			return invalid("custom service %q has a negative rate", cs.Name)
		}
		seen[name] = true
	}
	return nil
}

func (s *priceTableService) CreatePriceTable(ctx context.Context, table *models.PriceTable) error {
	if err := Validate(table); err != nil {
		return err
	}
	if err := checkCustomServices(table); err != nil {
		return err
	}
	table.ID = 0
	return s.repo.Create(ctx, table)
}

// GetPriceTable serves from the cache when possible.
func (s *priceTableService) GetPriceTable(ctx context.Context, id uint) (*models.PriceTable, error) {
	if s.cache != nil {
		var cached models.PriceTable
		err := s.cache.GetCachedPriceTable(ctx, id, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.Warn("price table cache read failed", zap.Uint("price_table_id", id), zap.Error(err))
		}
	}

	table, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "price table")
	}
	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.CachePriceTable(ctx, id, table, s.ttl); err != nil {
			s.log.Warn("price table cache write failed", zap.Uint("price_table_id", id), zap.Error(err))
		}
	}
	return table, nil
}

func (s *priceTableService) ListPriceTables(ctx context.Context, activeOnly bool) ([]models.PriceTable, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *priceTableService) PatchPriceTable(ctx context.Context, id uint, body []byte) (*models.PriceTable, error) {
	table, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "price table")
	}
	columns, err := applyPatch(table, body)
	if err != nil {
		return nil, err
	}
	if err := checkCustomServices(table); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateColumns(ctx, table, columns); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return table, nil
}

func (s *priceTableService) DeletePriceTable(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "price table")
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *priceTableService) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePriceTable(ctx, id); err != nil {
		s.log.Warn("price table invalidation failed", zap.Uint("price_table_id", id), zap.Error(err))
	}
}

// TableForClient resolves the client's own table, then the company default.
// It returns nil when neither exists; callers price against a nil table.
func (s *priceTableService) TableForClient(ctx context.Context, client *models.Client) (*models.PriceTable, error) {
	id := client.PriceTableID
	if id == nil {
		id = s.defaultTable()
	}
	if id == nil {
		s.log.Warn("client has no price table and no default is set", zap.Uint("client_id", client.ID))
		return nil, nil
	}
	table, err := s.GetPriceTable(ctx, *id)
	if errors.Is(err, ErrNotFound) {
		s.log.Warn("price table referenced by client is missing", zap.Uint("client_id", client.ID), zap.Uint("price_table_id", *id))
		return nil, nil
	}
	return table, err
}

func (s *priceTableService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	var table *models.PriceTable
	var err error
	switch {
	case req.PriceTableID != nil:
		table, err = s.GetPriceTable(ctx, *req.PriceTableID)
	case req.ClientID != nil:
		var client *models.Client
		client, err = s.clientRepo.GetByID(ctx, *req.ClientID)
		if err != nil {
			return nil, notFound(err, "client")
		}
		table, err = s.TableForClient(ctx, client)
	default:
		return nil, invalid("priceTableId or clientId is required")
	}
	if err != nil {
		return nil, err
	}

	weight := req.Weight
	if len(req.Packages) > 0 {
		weight = pricing.TotalWeight(req.Packages)
	}
	in := pricing.FreightInput{
		Weight:       weight,
		DeliveryType: pricing.DeliveryType(req.DeliveryType),
		CargoType:    pricing.CargoType(req.CargoType),
		CargoValue:   req.CargoValue,
	}
	if req.City != "" || req.Distance > 0 {
		in.City = &pricing.City{Name: req.City, Distance: req.Distance}
	}

	rt := table.RateTable()
	quote := &Quote{
		DeliveryType: req.DeliveryType,
		Weight:       weight,
		Freight:      s.calc.Freight(rt, in),
		Metropolitan: rt.IsMetropolitan(req.City),
	}
	if table != nil {
		quote.PriceTableID = table.ID
	}
	return quote, nil
}
