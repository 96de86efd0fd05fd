package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"logistics_manager/internal/appstate"
	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"
	"logistics_manager/internal/schema"
	"logistics_manager/internal/services"
	"logistics_manager/internal/shipmentflow"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"
	"go.uber.org/zap"
)

// Services is everything the HTTP API calls into.
type Services struct {
	Auth        services.AuthService
	Users       services.UserService
	Clients     services.ClientService
	PriceTables services.PriceTableService
	Deliveries  services.DeliveryService
	Budgets     services.BudgetService
	Shipments   services.ShipmentService
	Financial   services.FinancialService
	Inventory   services.InventoryService
	Logbook     services.LogbookService
	Employees   services.EmployeeService
	Settings    services.SettingsService
	Backup      services.BackupService
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type APIHandler struct {
	svc    Services
	checks map[string]HealthCheck
	log    *zap.Logger
}

func NewAPIHandler(svc Services, checks map[string]HealthCheck, log *zap.Logger) *APIHandler {
	return &APIHandler{svc: svc, checks: checks, log: log.Named("http")}
}

// Register mounts the API on r.
func (h *APIHandler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)

	authed := api.Group("", h.RequireSession())
	authed.POST("/auth/logout", h.Logout)
	authed.GET("/auth/me", h.Me)
	authed.POST("/auth/password", h.ChangePassword)

	read := authed.Group("", RequireRole(models.RoleViewer))
	write := authed.Group("", RequireRole(models.RoleOperator))
	admin := authed.Group("", RequireRole(models.RoleAdmin))

	read.GET("/clients", h.ListClients)
	read.GET("/clients/:id", h.GetClient)
	write.POST("/clients", h.CreateClient)
	write.PATCH("/clients/:id", h.PatchClient)
	write.DELETE("/clients/:id", h.DeleteClient)

	read.GET("/price-tables", h.ListPriceTables)
	read.GET("/price-tables/:id", h.GetPriceTable)
	read.POST("/pricing/quote", h.Quote)
	admin.POST("/price-tables", h.CreatePriceTable)
	admin.PATCH("/price-tables/:id", h.PatchPriceTable)
	admin.DELETE("/price-tables/:id", h.DeletePriceTable)

	read.GET("/deliveries", h.ListDeliveries)
	read.GET("/deliveries/:id", h.GetDelivery)
	write.POST("/deliveries", h.CreateDelivery)
	write.PATCH("/deliveries/:id", h.PatchDelivery)
	write.DELETE("/deliveries/:id", h.DeleteDelivery)

	read.GET("/budgets", h.ListBudgets)
	read.GET("/budgets/:id", h.GetBudget)
	write.POST("/budgets", h.CreateBudget)
	write.PUT("/budgets/:id", h.UpdateBudget)
	write.POST("/budgets/:id/approve", h.ApproveBudget)
	write.POST("/budgets/:id/reject", h.RejectBudget)
	write.POST("/budgets/:id/convert", h.ConvertBudget)
	write.DELETE("/budgets/:id", h.DeleteBudget)

	read.GET("/shipments", h.ListShipments)
	read.GET("/shipments/:id", h.GetShipment)
	read.GET("/shipments/:id/history", h.ShipmentHistory)
	write.POST("/shipments", h.CreateShipment)
	write.PATCH("/shipments/:id", h.PatchShipment)
	write.POST("/shipments/:id/status", h.ChangeShipmentStatus)
	write.DELETE("/shipments/:id", h.DeleteShipment)

	read.GET("/financial-reports", h.ListReports)
	read.GET("/financial-reports/:id", h.GetReport)
	write.POST("/financial-reports/generate", h.GenerateReport)
	write.PATCH("/financial-reports/:id", h.PatchReport)
	write.PATCH("/financial-reports/:id/status", h.ChangeReportStatus)
	admin.DELETE("/financial-reports/:id", h.DeleteReport)

	read.GET("/inventory", h.ListItems)
	read.GET("/inventory/:id", h.GetItem)
	read.GET("/inventory/:id/movements", h.ListMovements)
	write.POST("/inventory", h.CreateItem)
	write.PATCH("/inventory/:id", h.PatchItem)
	write.POST("/inventory/:id/movements", h.RecordMovement)
	write.DELETE("/inventory/:id", h.DeleteItem)

	read.GET("/logbook", h.ListLogbook)
	read.GET("/logbook/:id", h.GetLogbookEntry)
	write.POST("/logbook", h.CreateLogbookEntry)
	write.PATCH("/logbook/:id", h.PatchLogbookEntry)
	write.DELETE("/logbook/:id", h.DeleteLogbookEntry)

	read.GET("/employees", h.ListEmployees)
	read.GET("/employees/:id", h.GetEmployee)
	write.POST("/employees", h.CreateEmployee)
	write.PATCH("/employees/:id", h.PatchEmployee)
	write.DELETE("/employees/:id", h.DeleteEmployee)

	admin.GET("/users", h.ListUsers)
	admin.GET("/users/:id", h.GetUser)
	admin.POST("/users", h.CreateUser)
	admin.PATCH("/users/:id", h.PatchUser)
	admin.DELETE("/users/:id", h.DeleteUser)

	read.GET("/settings", h.GetSettings)
	admin.PUT("/settings", h.UpdateSettings)

	admin.GET("/backup/export", h.ExportBackup)
	admin.POST("/backup/import", h.ImportBackup)
}

func (h *APIHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	results := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	c.JSON(code, gin.H{"status": status, "checks": results})
}

// fail maps a service error onto an HTTP response.
func (h *APIHandler) fail(c *gin.Context, err error) {
	var (
		verr    *services.ValidationError
		ferr    *schema.FieldError
		missing *shipmentflow.MissingFieldsError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "fields": verr.Fields})
	case errors.As(err, &ferr):
		c.JSON(http.StatusBadRequest, gin.H{"error": ferr.Error(), "unknown": ferr.Unknown, "readOnly": ferr.ReadOnly})
	case errors.As(err, &missing):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": missing.Error(), "missing": missing.Fields})
	case errors.Is(err, shipmentflow.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict), errors.Is(err, shipmentflow.ErrIllegalTransition),
		errors.Is(err, repository.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, appstate.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bind decodes the JSON body into dst. Validation is left to the services so
// every entry point reports field errors the same way.
func bind(c *gin.Context, dst interface{}) bool {
	body, err := c.GetRawData()
	if err == nil {
		err = json.Unmarshal(body, dst)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return false
	}
	return true
}

func rawBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return nil, false
	}
	return body, true
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// queryUint reads an optional numeric query parameter. Absent means zero.
func queryUint(c *gin.Context, key string) (uint, bool) {
	v := c.Query(key)
	if v == "" {
		return 0, true
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", key)})
		return 0, false
	}
	return uint(n), true
}

func queryBool(c *gin.Context, key string) (*bool, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", key)})
		return nil, false
	}
	return &b, true
}

// queryPeriod reads from/to as YYYY-MM-DD. The to day is included whole.
func queryPeriod(c *gin.Context) (repository.Period, bool) {
	var p repository.Period
	for key, dst := range map[string]*time.Time{"from": &p.From, "to": &p.To} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s date, expected YYYY-MM-DD", key)})
			return p, false
		}
		*dst = t
	}
	if !p.To.IsZero() {
		p.To = now.With(p.To).EndOfDay()
	}
	return p, true
}
