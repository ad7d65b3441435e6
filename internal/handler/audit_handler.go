package handler

import (
	"net/http"

	"invoicer/internal/service"
	"invoicer/pkg/pagination"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit-logs", h.GetAuditLogs)
	router.GET("/api/invoices/:id/history", h.GetInvoiceHistory)
}

// GetAuditLogs lists recorded changes, newest first
// @Summary      Get audit logs
// @Tags         audit
// @Produce      json
// @Param        entity_id  query     string  false  "Only entries for this entity"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=response.Page}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	h.list(c, c.Query("entity_id"))
}

// GetInvoiceHistory lists the changes recorded for one invoice
// @Summary      Invoice history
// @Tags         audit
// @Produce      json
// @Param        id     path      string  true   "Invoice ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.Page}
// @Router       /api/invoices/{id}/history [get]
func (h *AuditHandler) GetInvoiceHistory(c *gin.Context) {
	h.list(c, c.Param("id"))
}

func (h *AuditHandler) list(c *gin.Context, entityID string) {
	p := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), entityID, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, logs, p.Page, p.Limit, total))
}
