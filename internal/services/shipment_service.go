package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"logistics_manager/internal/events"
	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"
	"logistics_manager/internal/shipmentflow"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Shipment fields owned by the status workflow. PATCH cannot touch them.
var shipmentWorkflowFields = []string{
	"trackingNumber", "clientId", "status", "retentionReason", "retainedAt",
	"receiverName", "deliveryDate", "deliveryTime", "deliveredAt", "createdBy",
}

// StatusChange is a requested shipment transition. DeliveryDate is YYYY-MM-DD.
type StatusChange struct {
	Status          string `json:"status" binding:"required"`
	RetentionReason string `json:"retentionReason"`
	ReceiverName    string `json:"receiverName"`
	DeliveryDate    string `json:"deliveryDate"`
	DeliveryTime    string `json:"deliveryTime"`
	Note            string `json:"note"`
}

// TransitionRecorder counts applied shipment transitions.
type TransitionRecorder interface {
	ShipmentTransition(from, to string)
}

type ShipmentService interface {
	CreateShipment(ctx context.Context, shipment *models.Shipment) error
	GetShipment(ctx context.Context, id uint) (*models.Shipment, error)
	ListShipments(ctx context.Context, filter repository.ShipmentFilter) ([]models.Shipment, error)
	PatchShipment(ctx context.Context, id uint, body []byte) (*models.Shipment, error)
	DeleteShipment(ctx context.Context, id uint) error
	ChangeStatus(ctx context.Context, id uint, change StatusChange, actorID *uint) (*models.Shipment, error)
	History(ctx context.Context, id uint) ([]models.ShipmentStatusEvent, error)
}

type shipmentService struct {
	shipmentRepo repository.ShipmentRepository
	clientRepo   repository.ClientRepository
	publisher    events.Publisher
	notifier     NotificationService
	recorder     TransitionRecorder
	log          *zap.Logger
	now          func() time.Time
}

type nopRecorder struct{}

func (nopRecorder) ShipmentTransition(string, string) {}

// NewShipmentService wires the service. publisher, notifier and recorder may be nil.
func NewShipmentService(
	shipmentRepo repository.ShipmentRepository,
	clientRepo repository.ClientRepository,
	publisher events.Publisher,
	notifier NotificationService,
	recorder TransitionRecorder,
	log *zap.Logger,
) ShipmentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &shipmentService{
		shipmentRepo: shipmentRepo,
		clientRepo:   clientRepo,
		publisher:    publisher,
		notifier:     notifier,
		recorder:     recorder,
		log:          log.Named("shipments"),
		now:          time.Now,
	}
}

func (s *shipmentService) CreateShipment(ctx context.Context, shipment *models.Shipment) error {
	if err := Validate(shipment); err != nil {
		return err
	}
	if _, err := s.clientRepo.GetByID(ctx, shipment.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("client %d does not exist", shipment.ClientID)
		}
		return err
	}

	shipment.ID = 0
	shipment.Client = nil
	shipment.Events = nil
	if strings.TrimSpace(shipment.TrackingNumber) == "" {
		shipment.TrackingNumber = newNumber("TRK")
	}
	shipment.Status = string(shipmentflow.InTransit)
	shipment.RetentionReason = ""
	shipment.RetainedAt = nil
	shipment.DeliveredAt = nil
	for i := range shipment.Documents {
		shipment.Documents[i].ID = 0
		shipment.Documents[i].ShipmentID = 0
	}
	return s.shipmentRepo.Create(ctx, shipment)
}

func (s *shipmentService) GetShipment(ctx context.Context, id uint) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "shipment")
	}
	return shipment, nil
}

func (s *shipmentService) ListShipments(ctx context.Context, filter repository.ShipmentFilter) ([]models.Shipment, error) {
	return s.shipmentRepo.List(ctx, filter)
}

func (s *shipmentService) PatchShipment(ctx context.Context, id uint, body []byte) (*models.Shipment, error) {
	shipment, err := s.GetShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	columns, err := applyPatch(shipment, body, shipmentWorkflowFields...)
	if err != nil {
		return nil, err
	}
	if err := s.shipmentRepo.UpdateColumns(ctx, shipment, columns); err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *shipmentService) DeleteShipment(ctx context.Context, id uint) error {
	return notFound(s.shipmentRepo.Delete(ctx, id), "shipment")
}

// ChangeStatus applies one workflow transition. The status write and its
// history row commit together; the event and the client notification follow
// and only log when they fail.
func (s *shipmentService) ChangeStatus(ctx context.Context, id uint, change StatusChange, actorID *uint) (*models.Shipment, error) {
	if err := Validate(change); err != nil {
		return nil, err
	}
	shipment, err := s.GetShipment(ctx, id)
	if err != nil {
		return nil, err
	}

	from := shipmentflow.Status(shipment.Status)
	req := shipmentflow.Request{
		To:              shipmentflow.Status(change.Status),
		RetentionReason: change.RetentionReason,
		ReceiverName:    change.ReceiverName,
		DeliveryTime:    change.DeliveryTime,
		Note:            change.Note,
	}
	if change.DeliveryDate != "" {
		date, err := time.Parse("2006-01-02", change.DeliveryDate)
		if err != nil {
			s.log.Warn("ignoring unparseable delivery date", zap.String("value", change.DeliveryDate))
		} else {
			req.DeliveryDate = date
		}
	}

	rule, err := shipmentflow.Plan(from, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	columns := []string{"status"}
	shipment.Status = string(req.To)
	if rule.Has(shipmentflow.StampRetention) {
		shipment.RetentionReason = strings.TrimSpace(req.RetentionReason)
		shipment.RetainedAt = &now
		columns = append(columns, "retention_reason", "retained_at")
	}
	if rule.Has(shipmentflow.ClearRetention) {
		shipment.RetentionReason = ""
		shipment.RetainedAt = nil
		columns = append(columns, "retention_reason", "retained_at")
	}
	if rule.Has(shipmentflow.StampDeliveredAt) {
		date := req.DeliveryDate
		shipment.ReceiverName = strings.TrimSpace(req.ReceiverName)
		shipment.DeliveryDate = &date
		shipment.DeliveryTime = strings.TrimSpace(req.DeliveryTime)
		shipment.DeliveredAt = &now
		columns = append(columns, "receiver_name", "delivery_date", "delivery_time", "delivered_at")
	}

	event := &models.ShipmentStatusEvent{
		FromStatus: string(from),
		ToStatus:   string(req.To),
		ActorID:    actorID,
		Note:       req.Note,
	}
	if err := s.shipmentRepo.ApplyTransition(ctx, shipment, columns, event); err != nil {
		return nil, notFound(err, "shipment")
	}
	shipment.Events = append(shipment.Events, *event)
	s.recorder.ShipmentTransition(string(from), string(req.To))
	s.log.Info("shipment status changed",
		zap.Uint("shipment_id", shipment.ID),
		zap.String("from", string(from)),
		zap.String("to", string(req.To)))

	if rule.Has(shipmentflow.PublishEvent) {
		err := s.publisher.PublishShipmentStatus(ctx, events.ShipmentStatusChanged{
			ShipmentID:     shipment.ID,
			TrackingNumber: shipment.TrackingNumber,
			ClientID:       shipment.ClientID,
			From:           string(from),
			To:             string(req.To),
			ActorID:        actorID,
			Note:           req.Note,
			OccurredAt:     now,
		})
		if err != nil {
			s.log.Error("failed to publish shipment event", zap.Uint("shipment_id", shipment.ID), zap.Error(err))
		}
	}
	if rule.Has(shipmentflow.NotifyClient) && s.notifier != nil && shipment.Client != nil {
		if err := s.notifier.NotifyDelivered(ctx, shipment, shipment.Client); err != nil {
			s.log.Error("failed to notify client", zap.Uint("shipment_id", shipment.ID), zap.Error(err))
		}
	}
	return shipment, nil
}

func (s *shipmentService) History(ctx context.Context, id uint) ([]models.ShipmentStatusEvent, error) {
	if _, err := s.GetShipment(ctx, id); err != nil {
		return nil, err
	}
	return s.shipmentRepo.Events(ctx, id)
}
