package services

import (
	"context"
	"fmt"

	"logistics_manager/internal/models"

	"go.uber.org/zap"
)

// MessageSender delivers a text message to a phone number.
type MessageSender interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

// NotificationToggle reports whether client notifications are switched on.
type NotificationToggle func() bool

type NotificationService interface {
	NotifyDelivered(ctx context.Context, shipment *models.Shipment, client *models.Client) error
}

type notificationService struct {
	sender  MessageSender
	enabled NotificationToggle
	log     *zap.Logger
}

// NewNotificationService returns a service that sends nothing when sender is nil.
func NewNotificationService(sender MessageSender, enabled NotificationToggle, log *zap.Logger) NotificationService {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &notificationService{sender: sender, enabled: enabled, log: log.Named("notifications")}
}

func (s *notificationService) NotifyDelivered(ctx context.Context, shipment *models.Shipment, client *models.Client) error {
	if s.sender == nil || !s.enabled() {
		return nil
	}
	phone := client.WhatsAppNumber
	if phone == "" {
		phone = client.Phone
	}
	if phone == "" {
		s.log.Info("client has no phone, skipping delivery notification", zap.Uint("client_id", client.ID))
		return nil
	}

	if err := s.sender.SendTextMessage(ctx, phone, deliveredMessage(shipment, client)); err != nil {
		return fmt.Errorf("failed to notify client %d: %w", client.ID, err)
	}
	s.log.Info("delivery notification sent", zap.Uint("shipment_id", shipment.ID), zap.Uint("client_id", client.ID))
	return nil
}

func deliveredMessage(shipment *models.Shipment, client *models.Client) string {
	msg := fmt.Sprintf("Ola %s, a remessa %s para %s foi entregue", client.Name, shipment.TrackingNumber, shipment.Destination)
	if shipment.ReceiverName != "" {
		msg += " e recebida por " + shipment.ReceiverName
	}
	if shipment.DeliveryDate != nil {
		msg += fmt.Sprintf(" em %s", shipment.DeliveryDate.Format("02/01/2006"))
		if shipment.DeliveryTime != "" {
			msg += " as " + shipment.DeliveryTime
		}
	}
	return msg + "."
}
