package handler

import (
	"net/http"

	"invoicer/internal/render"
	"invoicer/internal/service"
	"invoicer/pkg/pagination"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.POST("/calculate", h.PreviewTotals)
		invoices.GET("/next-number", h.NextInvoiceNumber)
		invoices.GET("/draft", h.NewDraft)
		invoices.GET("/summary", h.Summary)

		invoices.GET("", h.ListInvoices)
		invoices.POST("", h.CreateInvoice)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PUT("/:id", h.UpdateInvoice)
		invoices.DELETE("/:id", h.DeleteInvoice)
		invoices.PATCH("/:id/status", h.UpdateStatus)
		invoices.POST("/:id/duplicate", h.DuplicateInvoice)
		invoices.GET("/:id/pdf", h.DownloadPDF)

		invoices.POST("/:id/items", h.InsertLineItem)
		invoices.PATCH("/:id/items/:itemId", h.UpdateLineItem)
		invoices.DELETE("/:id/items/:itemId", h.RemoveLineItem)
		invoices.PUT("/:id/items/:itemId/position", h.MoveLineItem)
	}
}

// NewDraft returns a pre-filled form for a new invoice
// @Summary      New invoice draft
// @Description  Next number, today's date, one empty line item, the default company profile and optionally a saved customer
// @Tags         invoices
// @Produce      json
// @Param        customer_id  query     string  false  "Saved customer to pre-fill"
// @Success      200          {object}  response.Response{data=service.InvoiceRequest}
// @Failure      400          {object}  response.Response
// @Failure      404          {object}  response.Response
// @Router       /api/invoices/draft [get]
func (h *InvoiceHandler) NewDraft(c *gin.Context) {
	draft, err := h.invoiceService.NewDraft(c.Request.Context(), c.Query("customer_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, draft))
}

// PreviewTotals computes totals for unsaved items and fees
// @Summary      Calculate totals
// @Description  Derives line amounts, surcharge, convenience fee, tax and total without saving anything
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PreviewRequest  true  "Items and fees"
// @Success      200      {object}  response.Response{data=service.PreviewResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/calculate [post]
func (h *InvoiceHandler) PreviewTotals(c *gin.Context) {
	var req service.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.invoiceService.PreviewTotals(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// NextInvoiceNumber suggests the next sequence number
// @Summary      Next invoice number
// @Tags         invoices
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/invoices/next-number [get]
func (h *InvoiceHandler) NextInvoiceNumber(c *gin.Context) {
	number := h.invoiceService.NextInvoiceNumber(c.Request.Context())
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"invoice_number": number}))
}

// Summary returns outstanding, overdue and paid totals
// @Summary      Invoice summary
// @Tags         invoices
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SummaryResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/invoices/summary [get]
func (h *InvoiceHandler) Summary(c *gin.Context) {
	res, err := h.invoiceService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListInvoices returns a page of invoices, newest first
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        status  query     string  false  "Filter by status (draft, open, paid, overdue, canceled)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Failure      400     {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	p := pagination.Parse(c)

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), service.InvoiceFilter{
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, invoices, p.Page, p.Limit, total))
}

// CreateInvoice saves a new invoice
// @Summary      Create invoice
// @Description  Saves a new invoice. Without a custom number the next sequence number is assigned.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.InvoiceRequest  true  "Invoice"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// GetInvoice returns one invoice
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// UpdateInvoice replaces an invoice
// @Summary      Update invoice
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Invoice ID"
// @Param        payload  body      service.InvoiceRequest  true  "Invoice"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req service.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// DeleteInvoice removes an invoice
// @Summary      Delete invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Invoice deleted"))
}

// UpdateStatus sets the invoice status
// @Summary      Change invoice status
// @Description  Any status may be set from any other
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Invoice ID"
// @Param        payload  body      service.StatusRequest  true  "New status"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	var req service.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// DuplicateInvoice copies an invoice as a new draft
// @Summary      Duplicate invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      201  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/duplicate [post]
func (h *InvoiceHandler) DuplicateInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.DuplicateInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// DownloadPDF streams the rendered invoice
// @Summary      Download invoice PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id   path  string  true  "Invoice ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	pdf, invoice, err := h.invoiceService.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+render.FileName(invoice)+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// InsertLineItem appends an empty line item
// @Summary      Add line item
// @Tags         line-items
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/items [post]
func (h *InvoiceHandler) InsertLineItem(c *gin.Context) {
	invoice, err := h.invoiceService.InsertLineItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// UpdateLineItem changes one field of a line item
// @Summary      Edit line item
// @Description  Sets description, quantity or rate; the amount and totals are recomputed
// @Tags         line-items
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Invoice ID"
// @Param        itemId   path      string                         true  "Line item ID"
// @Param        payload  body      service.LineItemUpdateRequest  true  "Field and value"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/{id}/items/{itemId} [patch]
func (h *InvoiceHandler) UpdateLineItem(c *gin.Context) {
	var req service.LineItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := h.invoiceService.UpdateLineItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// RemoveLineItem deletes a line item
// @Summary      Remove line item
// @Tags         line-items
// @Security     BearerAuth
// @Produce      json
// @Param        id      path      string  true  "Invoice ID"
// @Param        itemId  path      string  true  "Line item ID"
// @Success      200     {object}  response.Response{data=service.InvoiceResponse}
// @Router       /api/invoices/{id}/items/{itemId} [delete]
func (h *InvoiceHandler) RemoveLineItem(c *gin.Context) {
	invoice, err := h.invoiceService.RemoveLineItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// MoveLineItem moves a line item to a new position
// @Summary      Reorder line item
// @Description  Out of range positions are clamped to the first or last slot
// @Tags         line-items
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Invoice ID"
// @Param        itemId   path      string                      true  "Line item ID"
// @Param        payload  body      service.MoveLineItemRequest  true  "Target index"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Router       /api/invoices/{id}/items/{itemId}/position [put]
func (h *InvoiceHandler) MoveLineItem(c *gin.Context) {
	var req service.MoveLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := h.invoiceService.MoveLineItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), *req.Index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}
