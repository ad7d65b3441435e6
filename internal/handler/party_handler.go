package handler

import (
	"net/http"

	"invoicer/internal/service"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

// PartyHandler serves saved customers and company profiles
type PartyHandler struct {
	partyService service.PartyService
}

func NewPartyHandler(partyService service.PartyService) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

func (h *PartyHandler) RegisterRoutes(router *gin.RouterGroup) {
	customers := router.Group("/api/customers")
	{
		customers.GET("", h.ListCustomers)
		customers.POST("", h.CreateCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
	}

	companies := router.Group("/api/company-profiles")
	{
		companies.GET("", h.ListCompanies)
		companies.GET("/default", h.GetDefaultCompany)
		companies.POST("", h.CreateCompany)
		companies.PUT("/:id", h.UpdateCompany)
		companies.DELETE("/:id", h.DeleteCompany)
	}
}

// ListCustomers returns every saved customer by name
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.CustomerResponse}
// @Router       /api/customers [get]
func (h *PartyHandler) ListCustomers(c *gin.Context) {
	customers, err := h.partyService.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customers))
}

// CreateCustomer saves a new customer
// @Summary      Create customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PartyRequest  true  "Customer"
// @Success      201      {object}  response.Response{data=service.CustomerResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/customers [post]
func (h *PartyHandler) CreateCustomer(c *gin.Context) {
	var req service.PartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := h.partyService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// UpdateCustomer overwrites a customer
// @Summary      Update customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Customer ID"
// @Param        payload  body      service.PartyRequest  true  "Customer"
// @Success      200      {object}  response.Response{data=service.CustomerResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id} [put]
func (h *PartyHandler) UpdateCustomer(c *gin.Context) {
	var req service.PartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := h.partyService.UpdateCustomer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// DeleteCustomer removes a customer. Invoices keep their snapshot.
// @Summary      Delete customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [delete]
func (h *PartyHandler) DeleteCustomer(c *gin.Context) {
	if err := h.partyService.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Customer deleted"))
}

// ListCompanies returns company profiles, default first
// @Summary      List company profiles
// @Tags         company-profiles
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.CompanyProfileResponse}
// @Router       /api/company-profiles [get]
func (h *PartyHandler) ListCompanies(c *gin.Context) {
	profiles, err := h.partyService.ListCompanies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profiles))
}

// GetDefaultCompany returns the profile preselected on new invoices
// @Summary      Default company profile
// @Tags         company-profiles
// @Produce      json
// @Success      200  {object}  response.Response{data=service.CompanyProfileResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/company-profiles/default [get]
func (h *PartyHandler) GetDefaultCompany(c *gin.Context) {
	profile, err := h.partyService.GetDefaultCompany(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// CreateCompany saves a new company profile
// @Summary      Create company profile
// @Tags         company-profiles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PartyRequest  true  "Company profile"
// @Success      201      {object}  response.Response{data=service.CompanyProfileResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/company-profiles [post]
func (h *PartyHandler) CreateCompany(c *gin.Context) {
	var req service.PartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.partyService.CreateCompany(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, profile))
}

// UpdateCompany overwrites a company profile
// @Summary      Update company profile
// @Tags         company-profiles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Company profile ID"
// @Param        payload  body      service.PartyRequest  true  "Company profile"
// @Success      200      {object}  response.Response{data=service.CompanyProfileResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/company-profiles/{id} [put]
func (h *PartyHandler) UpdateCompany(c *gin.Context) {
	var req service.PartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.partyService.UpdateCompany(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// DeleteCompany removes a company profile
// @Summary      Delete company profile
// @Tags         company-profiles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Company profile ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/company-profiles/{id} [delete]
func (h *PartyHandler) DeleteCompany(c *gin.Context) {
	if err := h.partyService.DeleteCompany(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Company profile deleted"))
}
