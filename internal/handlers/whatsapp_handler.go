package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"
	"logistics_manager/internal/services"
	"logistics_manager/internal/shipmentflow"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxTrackedPerMessage bounds how many tracking numbers one message can look up.
const maxTrackedPerMessage = 5

var trackingPattern = regexp.MustCompile(`(?i)\bTRK-[0-9A-F]{10}\b`)

var statusLabels = map[shipmentflow.Status]string{
	shipmentflow.InTransit:          "em transito",
	shipmentflow.Retained:           "retida",
	shipmentflow.Delivered:          "entregue",
	shipmentflow.PartiallyDelivered: "entregue parcialmente",
	shipmentflow.DeliveredFinal:     "entrega finalizada",
}

// WhatsAppHandler answers tracking questions sent to the company number.
type WhatsAppHandler struct {
	shipments services.ShipmentService
	sender    services.MessageSender
	log       *zap.Logger
}

func NewWhatsAppHandler(shipments services.ShipmentService, sender services.MessageSender, log *zap.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{shipments: shipments, sender: sender, log: log.Named("whatsapp")}
}

type WebhookRequest struct {
	SenderID  string `json:"sender_id"`
	ChatID    string `json:"chat_id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Pushname  string `json:"pushname"`
	Message   struct {
		Text string `json:"text"`
		ID   string `json:"id"`
	} `json:"message"`
}

func (h *WhatsAppHandler) Register(r gin.IRouter) {
	r.POST("/api/whatsapp/webhook", h.HandleWebhook)
}

func (h *WhatsAppHandler) HandleWebhook(c *gin.Context) {
	var req WebhookRequest
	if !bind(c, &req) {
		return
	}

	// Gateway ids look like 5511987654321@s.whatsapp.net.
	phone := req.From
	if phone == "" {
		phone = req.SenderID
	}
	if i := strings.Index(phone, "@"); i >= 0 {
		phone = phone[:i]
	}
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing sender"})
		return
	}

	numbers := trackingNumbers(req.Message.Text)
	if len(numbers) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	reply, err := h.trackingReply(c, numbers)
	if err != nil {
		h.log.Error("tracking lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if h.sender == nil {
		c.JSON(http.StatusOK, gin.H{"status": "disabled", "reply": reply})
		return
	}
	if err := h.sender.SendTextMessage(c.Request.Context(), phone, reply); err != nil {
		h.log.Warn("tracking reply not sent", zap.String("phone", phone), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "tracked": len(numbers)})
}

// trackingNumbers returns the distinct tracking numbers in text, upper-cased.
func trackingNumbers(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range trackingPattern.FindAllString(text, -1) {
		m = strings.ToUpper(m)
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
		if len(out) == maxTrackedPerMessage {
			break
		}
	}
	return out
}

func (h *WhatsAppHandler) trackingReply(c *gin.Context, numbers []string) (string, error) {
	lines := make([]string, 0, len(numbers))
	for _, number := range numbers {
		found, err := h.shipments.ListShipments(c.Request.Context(), repository.ShipmentFilter{Tracking: number})
		if err != nil {
			return "", fmt.Errorf("failed to look up %s: %w", number, err)
		}
		if len(found) == 0 {
			lines = append(lines, fmt.Sprintf("%s: remessa nao encontrada.", number))
			continue
		}
		lines = append(lines, describeShipment(&found[0]))
	}
	return strings.Join(lines, "\n"), nil
}

func describeShipment(s *models.Shipment) string {
	status := shipmentflow.Status(s.Status)
	label, ok := statusLabels[status]
	if !ok {
		label = s.Status
	}
	line := fmt.Sprintf("%s (%s -> %s): %s", s.TrackingNumber, s.Origin, s.Destination, label)
	switch status {
	case shipmentflow.Retained:
		if s.RetentionReason != "" {
			line += ", motivo: " + s.RetentionReason
		}
	case shipmentflow.Delivered, shipmentflow.PartiallyDelivered, shipmentflow.DeliveredFinal:
		if s.ReceiverName != "" {
			line += ", recebida por " + s.ReceiverName
		}
		if s.DeliveryDate != nil {
			line += " em " + s.DeliveryDate.Format("02/01/2006")
		}
	}
	return line + "."
}
