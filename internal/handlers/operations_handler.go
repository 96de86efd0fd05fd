package handlers

import (
	"net/http"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"
	"logistics_manager/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) ListBudgets(c *gin.Context) {
	clientID, ok := queryUint(c, "clientId")
	if !ok {
		return
	}
	budgets, err := h.svc.Budgets.ListBudgets(c.Request.Context(), repository.BudgetFilter{
		ClientID: clientID,
		Status:   c.Query("status"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, budgets)
}

func (h *APIHandler) GetBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	budget, err := h.svc.Budgets.GetBudget(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (h *APIHandler) CreateBudget(c *gin.Context) {
	var budget models.Budget
	if !bind(c, &budget) {
		return
	}
	budget.CreatedBy = actorID(c)
	if err := h.svc.Budgets.CreateBudget(c.Request.Context(), &budget); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, budget)
}

func (h *APIHandler) UpdateBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input models.Budget
	if !bind(c, &input) {
		return
	}
	budget, err := h.svc.Budgets.UpdateBudget(c.Request.Context(), id, &input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (h *APIHandler) ApproveBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	budget, err := h.svc.Budgets.ApproveBudget(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (h *APIHandler) RejectBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	budget, err := h.svc.Budgets.RejectBudget(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (h *APIHandler) ConvertBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	delivery, err := h.svc.Budgets.ConvertBudget(c.Request.Context(), id, actorID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, delivery)
}

func (h *APIHandler) DeleteBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Budgets.DeleteBudget(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) ListShipments(c *gin.Context) {
	clientID, ok := queryUint(c, "clientId")
	if !ok {
		return
	}
	shipments, err := h.svc.Shipments.ListShipments(c.Request.Context(), repository.ShipmentFilter{
		ClientID: clientID,
		Status:   c.Query("status"),
		Tracking: c.Query("tracking"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shipments)
}

func (h *APIHandler) GetShipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	shipment, err := h.svc.Shipments.GetShipment(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h *APIHandler) CreateShipment(c *gin.Context) {
	var shipment models.Shipment
	if !bind(c, &shipment) {
		return
	}
	shipment.CreatedBy = actorID(c)
	if err := h.svc.Shipments.CreateShipment(c.Request.Context(), &shipment); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, shipment)
}

func (h *APIHandler) PatchShipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := rawBody(c)
	if !ok {
		return
	}
	shipment, err := h.svc.Shipments.PatchShipment(c.Request.Context(), id, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h *APIHandler) ChangeShipmentStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var change services.StatusChange
	if !bind(c, &change) {
		return
	}
	shipment, err := h.svc.Shipments.ChangeStatus(c.Request.Context(), id, change, actorID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h *APIHandler) ShipmentHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	history, err := h.svc.Shipments.History(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *APIHandler) DeleteShipment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Shipments.DeleteShipment(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) ListItems(c *gin.Context) {
	lowStock, ok := queryBool(c, "lowStock")
	if !ok {
		return
	}
	items, err := h.svc.Inventory.ListItems(c.Request.Context(), repository.InventoryFilter{
		Search:   c.Query("search"),
		Location: c.Query("location"),
		LowStock: lowStock != nil && *lowStock,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *APIHandler) GetItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.svc.Inventory.GetItem(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *APIHandler) CreateItem(c *gin.Context) {
	var item models.InventoryItem
	if !bind(c, &item) {
		return
	}
	if err := h.svc.Inventory.CreateItem(c.Request.Context(), &item); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *APIHandler) PatchItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := rawBody(c)
	if !ok {
		return
	}
	item, err := h.svc.Inventory.PatchItem(c.Request.Context(), id, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *APIHandler) DeleteItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Inventory.DeleteItem(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) RecordMovement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.MovementRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.svc.Inventory.RecordMovement(c.Request.Context(), id, req, actorID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *APIHandler) ListMovements(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	movements, err := h.svc.Inventory.Movements(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}

func (h *APIHandler) ListLogbook(c *gin.Context) {
	employeeID, ok := queryUint(c, "employeeId")
	if !ok {
		return
	}
	period, ok := queryPeriod(c)
	if !ok {
		return
	}
	entries, err := h.svc.Logbook.ListEntries(c.Request.Context(), repository.LogbookFilter{
		VehiclePlate: c.Query("plate"),
		EmployeeID:   employeeID,
		Period:       period,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *APIHandler) GetLogbookEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	entry, err := h.svc.Logbook.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry, "distance": entry.Distance()})
}

func (h *APIHandler) CreateLogbookEntry(c *gin.Context) {
	var entry models.LogbookEntry
	if !bind(c, &entry) {
		return
	}
	if err := h.svc.Logbook.CreateEntry(c.Request.Context(), &entry); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *APIHandler) PatchLogbookEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := rawBody(c)
	if !ok {
		return
	}
	entry, err := h.svc.Logbook.PatchEntry(c.Request.Context(), id, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *APIHandler) DeleteLogbookEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Logbook.DeleteEntry(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
