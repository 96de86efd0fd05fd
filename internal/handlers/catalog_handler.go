package handlers

import (
	"net/http"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"
	"logistics_manager/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) ListClients(c *gin.Context) {
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	clients, err := h.svc.Clients.ListClients(c.Request.Context(), repository.ClientFilter{
		Search: c.Query("search"),
		Active: active,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *APIHandler) GetClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, err := h.svc.Clients.GetClient(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *APIHandler) CreateClient(c *gin.Context) {
	client := models.Client{IsActive: true}
	if !bind(c, &client) {
		return
	}
	if err := h.svc.Clients.CreateClient(c.Request.Context(), &client); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *APIHandler) PatchClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := rawBody(c)
	if !ok {
		return
	}
	client, err := h.svc.Clients.PatchClient(c.Request.Context(), id, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *APIHandler) DeleteClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Clients.DeleteClient(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) ListPriceTables(c *gin.Context) {
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	tables, err := h.svc.PriceTables.ListPriceTables(c.Request.Context(), active != nil && *active)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *APIHandler) GetPriceTable(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	table, err := h.svc.PriceTables.GetPriceTable(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *APIHandler) CreatePriceTable(c *gin.Context) {
	table := models.PriceTable{IsActive: true}
	if !bind(c, &table) {
		return
	}
	if err := h.svc.PriceTables.CreatePriceTable(c.Request.Context(), &table); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *APIHandler) PatchPriceTable(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := rawBody(c)
	if !ok {
		return
	}
	table, err := h.svc.PriceTables.PatchPriceTable(c.Request.Context(), id, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *APIHandler) DeletePriceTable(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.PriceTables.DeletePriceTable(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) Quote(c *gin.Context) {
	var req services.QuoteRequest
	if !bind(c, &req) {
		return
	}
	quote, err := h.svc.PriceTables.Quote(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *APIHandler) ListDeliveries(c *gin.Context) {
	clientID, ok := queryUint(c, "clientId")
	if !ok {
		return
	}
	period, ok := queryPeriod(c)
	if !ok {
		return
	}
	deliveries, err := h.svc.Deliveries.ListDeliveries(c.Request.Context(), repository.DeliveryFilter{
		ClientID: clientID,
		Status:   c.Query("status"),
		Period:   period,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, deliveries)
}

func (h *APIHandler) GetDelivery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	delivery, err := h.svc.Deliveries.GetDelivery(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, delivery)
}

func (h *APIHandler) CreateDelivery(c *gin.Context) {
	var delivery models.Delivery
	if !bind(c, &delivery) {
		return
	}
	delivery.CreatedBy = actorID(c)
	if err := h.svc.Deliveries.CreateDelivery(c.Request.Context(), &delivery); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, delivery)
}

func (h *APIHandler) PatchDelivery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := rawBody(c)
	if !ok {
		return
	}
	delivery, err := h.svc.Deliveries.PatchDelivery(c.Request.Context(), id, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, delivery)
}

func (h *APIHandler) DeleteDelivery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Deliveries.DeleteDelivery(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
