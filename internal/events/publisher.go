package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ShipmentStatusChanged is published for every applied shipment transition.
type ShipmentStatusChanged struct {
	ShipmentID     uint      `json:"shipmentId"`
	TrackingNumber string    `json:"trackingNumber"`
	ClientID       uint      `json:"clientId"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	ActorID        *uint     `json:"actorId,omitempty"`
	Note           string    `json:"note,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

type Publisher interface {
	PublishShipmentStatus(ctx context.Context, event ShipmentStatusChanged) error
	Close() error
}

// Writer is the part of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// batchTimeout bounds how long a single status change waits for its batch to
// fill before it is flushed.
const batchTimeout = 10 * time.Millisecond

type KafkaPublisher struct {
	writer Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokerURL, topic string, log *zap.Logger) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokerURL),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           batchTimeout,
		AllowAutoTopicCreation: true,
	}, log)
}

func NewKafkaPublisherWithWriter(w Writer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log.Named("events")}
}

// PublishShipmentStatus keys messages by shipment id so one shipment's events
// stay ordered within a partition.
func (p *KafkaPublisher) PublishShipmentStatus(ctx context.Context, event ShipmentStatusChanged) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal shipment event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.ShipmentID), 10)),
		Value: value,
		Time:  event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("kafka write failed", zap.Uint("shipment_id", event.ShipmentID), zap.Error(err))
		return fmt.Errorf("failed to publish shipment event: %w", err)
	}
	p.log.Debug("shipment event published", zap.Uint("shipment_id", event.ShipmentID), zap.String("to", event.To))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishShipmentStatus(context.Context, ShipmentStatusChanged) error { return nil }
func (NopPublisher) Close() error { return nil }
