package handlers

import (
	"fmt"
	"net/http"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"
	"logistics_manager/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) ListReports(c *gin.Context) {
	clientID, ok := queryUint(c, "clientId")
	if !ok {
		return
	}
	reports, err := h.svc.Financial.ListReports(c.Request.Context(), repository.ReportFilter{
		ClientID: clientID,
		Status:   c.Query("status"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *APIHandler) GetReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	report, err := h.svc.Financial.GetReport(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *APIHandler) GenerateReport(c *gin.Context) {
	var req services.GenerateReportRequest
	if !bind(c, &req) {
		return
	}
	report, err := h.svc.Financial.GenerateReport(c.Request.Context(), req, actorID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *APIHandler) PatchReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := rawBody(c)
	if !ok {
		return
	}
	report, err := h.svc.Financial.PatchReport(c.Request.Context(), id, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *APIHandler) ChangeReportStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !bind(c, &req) {
		return
	}
	report, err := h.svc.Financial.ChangeReportStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *APIHandler) DeleteReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Financial.DeleteReport(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) ListEmployees(c *gin.Context) {
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	employees, err := h.svc.Employees.ListEmployees(c.Request.Context(), c.Query("role"), active != nil && *active)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

func (h *APIHandler) GetEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	employee, err := h.svc.Employees.GetEmployee(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *APIHandler) CreateEmployee(c *gin.Context) {
	employee := models.Employee{IsActive: true}
	if !bind(c, &employee) {
		return
	}
	if err := h.svc.Employees.CreateEmployee(c.Request.Context(), &employee); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func (h *APIHandler) PatchEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := rawBody(c)
	if !ok {
		return
	}
	employee, err := h.svc.Employees.PatchEmployee(c.Request.Context(), id, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (h *APIHandler) DeleteEmployee(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Employees.DeleteEmployee(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Settings.GetSettings(c.Request.Context()))
}

func (h *APIHandler) UpdateSettings(c *gin.Context) {
	var input models.CompanySettings
	if !bind(c, &input) {
		return
	}
	settings, err := h.svc.Settings.UpdateSettings(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *APIHandler) ExportBackup(c *gin.Context) {
	backup, err := h.svc.Backup.Export(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	name := fmt.Sprintf("backup-%s.json", backup.ExportedAt.Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.JSON(http.StatusOK, backup)
}

func (h *APIHandler) ImportBackup(c *gin.Context) {
	body, ok := rawBody(c)
	if !ok {
		return
	}
	res, err := h.svc.Backup.Import(c.Request.Context(), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
