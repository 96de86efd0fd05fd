package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"
	"logistics_manager/internal/schema"
	"logistics_manager/internal/shipmentflow"

	"go.uber.org/zap"
)

const BackupVersion = 1

// Backup is the export document. Keys are camelCase; ids are the source
// database's and are remapped on import.
type Backup struct {
	Version     int                 `json:"version"`
	ExportedAt  time.Time           `json:"exportedAt"`
	Clients     []models.Client     `json:"clients"`
	PriceTables []models.PriceTable `json:"priceTables"`
	Deliveries  []models.Delivery   `json:"deliveries"`
	Shipments   []models.Shipment   `json:"shipments"`
	Employees   []models.Employee   `json:"employees"`
}

// rawBackup is Backup as read from an import, before any record is trusted.
type rawBackup struct {
	Version     int               `json:"version"`
	Clients     []json.RawMessage `json:"clients"`
	PriceTables []json.RawMessage `json:"priceTables"`
	Deliveries  []json.RawMessage `json:"deliveries"`
	Shipments   []json.RawMessage `json:"shipments"`
	Employees   []json.RawMessage `json:"employees"`
}

type ImportError struct {
	Entity  string `json:"entity"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

type ImportResult struct {
	Inserted map[string]int `json:"inserted"`
	Skipped  map[string]int `json:"skipped"`
	Errors   []ImportError  `json:"errors"`
}

func (r *ImportResult) fail(entity string, index int, err error) {
	r.Skipped[entity]++
	r.Errors = append(r.Errors, ImportError{Entity: entity, Index: index, Message: err.Error()})
}

type BackupService interface {
	Export(ctx context.Context) (*Backup, error)
	Import(ctx context.Context, data []byte) (*ImportResult, error)
}

type BackupRepositories struct {
	Clients     repository.ClientRepository
	PriceTables repository.PriceTableRepository
	Deliveries  repository.DeliveryRepository
	Shipments   repository.ShipmentRepository
	Employees   repository.EmployeeRepository
}

type backupService struct {
	repos BackupRepositories
	log   *zap.Logger
	now   func() time.Time
}

func NewBackupService(repos BackupRepositories, log *zap.Logger) BackupService {
	return &backupService{repos: repos, log: log.Named("backup"), now: time.Now}
}

func (s *backupService) Export(ctx context.Context) (*Backup, error) {
	out := &Backup{Version: BackupVersion, ExportedAt: s.now()}
	var err error
	if out.Clients, err = s.repos.Clients.List(ctx, repository.ClientFilter{}); err != nil {
		return nil, fmt.Errorf("failed to export clients: %w", err)
	}
	if out.PriceTables, err = s.repos.PriceTables.List(ctx, false); err != nil {
		return nil, fmt.Errorf("failed to export price tables: %w", err)
	}
	if out.Deliveries, err = s.repos.Deliveries.List(ctx, repository.DeliveryFilter{}); err != nil {
		return nil, fmt.Errorf("failed to export deliveries: %w", err)
	}
	if out.Shipments, err = s.repos.Shipments.List(ctx, repository.ShipmentFilter{}); err != nil {
		return nil, fmt.Errorf("failed to export shipments: %w", err)
	}
	if out.Employees, err = s.repos.Employees.List(ctx, "", false); err != nil {
		return nil, fmt.Errorf("failed to export employees: %w", err)
	}

	for i := range out.Clients {
		out.Clients[i].PriceTable = nil
	}
	for i := range out.Deliveries {
		out.Deliveries[i].Client = nil
	}
	for i := range out.Shipments {
		out.Shipments[i].Client = nil
		out.Shipments[i].Events = nil
	}
	return out, nil
}

// decodeRecord reads one exported record into a T. Snake_case keys are
// accepted, and keys the entity does not know are reported and dropped.
func decodeRecord[T any](raw json.RawMessage) (*T, []string, error) {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, nil, invalid("record is not a JSON object: %v", err)
	}
	var out T
	e, err := schema.For(&out)
	if err != nil {
		return nil, nil, err
	}
	dropped := schema.Normalize(e, record)

	normalized, err := json.Marshal(record)
	if err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal(normalized, &out); err != nil {
		return nil, nil, invalid("invalid field value: %v", err)
	}
	return &out, dropped, nil
}

// idMap translates source ids into the ids assigned on insert. Only records
// that were imported have an entry.
type idMap struct {
	entity string
	ids    map[uint]uint
}

func newIDMap(entity string) idMap {
	return idMap{entity: entity, ids: map[uint]uint{}}
}

func (m idMap) resolve(id uint) (uint, error) {
	if n, ok := m.ids[id]; ok {
		return n, nil
	}
	return 0, invalid("references %s %d, which was not imported", m.entity, id)
}

func (m idMap) resolvePtr(id *uint) (*uint, error) {
	if id == nil {
		return nil, nil
	}
	n, err := m.resolve(*id)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Import inserts every valid record of a backup. Records failing to decode,
// validate or insert are skipped and reported, and so are records referencing
// a skipped one. The rest still go in.
func (s *backupService) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	var doc rawBackup
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, invalid("invalid backup document: %v", err)
	}
	if doc.Version > BackupVersion {
		return nil, invalid("backup version %d is newer than supported version %d", doc.Version, BackupVersion)
	}

	res := &ImportResult{Inserted: map[string]int{}, Skipped: map[string]int{}}
	priceTableIDs, clientIDs, deliveryIDs := newIDMap("price table"), newIDMap("client"), newIDMap("delivery")

	importEach(ctx, s, res, "priceTables", doc.PriceTables, func(t *models.PriceTable) error {
		old := t.ID
		t.ID = 0
		if err := checkCustomServices(t); err != nil {
			return err
		}
		if err := s.repos.PriceTables.Create(ctx, t); err != nil {
			return err
		}
		priceTableIDs.ids[old] = t.ID
		return nil
	})

	importEach(ctx, s, res, "clients", doc.Clients, func(c *models.Client) error {
		old := c.ID
		c.ID = 0
		c.PriceTable = nil
		var err error
		if c.PriceTableID, err = priceTableIDs.resolvePtr(c.PriceTableID); err != nil {
			return err
		}
		if err := s.repos.Clients.Create(ctx, c); err != nil {
			return err
		}
		clientIDs.ids[old] = c.ID
		return nil
	})

	importEach(ctx, s, res, "employees", doc.Employees, func(e *models.Employee) error {
		e.ID = 0
		return s.repos.Employees.Create(ctx, e)
	})

	importEach(ctx, s, res, "deliveries", doc.Deliveries, func(d *models.Delivery) error {
		old := d.ID
		d.ID = 0
		d.Client = nil
		var err error
		if d.ClientID, err = clientIDs.resolve(d.ClientID); err != nil {
			return err
		}
		for i := range d.Packages {
			d.Packages[i].ID = 0
			d.Packages[i].DeliveryID = 0
		}
		if err := s.repos.Deliveries.Create(ctx, d); err != nil {
			return err
		}
		deliveryIDs.ids[old] = d.ID
		return nil
	})

	importEach(ctx, s, res, "shipments", doc.Shipments, func(sh *models.Shipment) error {
		sh.ID = 0
		sh.Client = nil
		sh.Events = nil
		if sh.Status == "" {
			sh.Status = string(shipmentflow.InTransit)
		}
		if !shipmentflow.Valid(shipmentflow.Status(sh.Status)) {
			return invalid("unknown shipment status %q", sh.Status)
		}
		var err error
		if sh.ClientID, err = clientIDs.resolve(sh.ClientID); err != nil {
			return err
		}
		if sh.DeliveryID, err = deliveryIDs.resolvePtr(sh.DeliveryID); err != nil {
			return err
		}
		for i := range sh.Documents {
			sh.Documents[i].ID = 0
			sh.Documents[i].ShipmentID = 0
		}
		return s.repos.Shipments.Create(ctx, sh)
	})

	s.log.Info("backup imported",
		zap.Any("inserted", res.Inserted),
		zap.Any("skipped", res.Skipped))
	return res, nil
}

func importEach[T any](ctx context.Context, s *backupService, res *ImportResult, entity string, records []json.RawMessage, insert func(*T) error) {
	for i, raw := range records {
		if ctx.Err() != nil {
			res.fail(entity, i, ctx.Err())
			continue
		}
		record, dropped, err := decodeRecord[T](raw)
		if err != nil {
			res.fail(entity, i, err)
			continue
		}
		if len(dropped) > 0 {
			s.log.Warn("ignoring unknown backup fields", zap.String("entity", entity), zap.Int("index", i), zap.Strings("fields", dropped))
		}
		if err := Validate(record); err != nil {
			res.fail(entity, i, err)
			continue
		}
		if err := insert(record); err != nil {
			s.log.Warn("skipping backup record", zap.String("entity", entity), zap.Int("index", i), zap.Error(err))
			res.fail(entity, i, err)
			continue
		}
		res.Inserted[entity]++
	}
}
