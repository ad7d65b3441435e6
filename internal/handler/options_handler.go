package handler

import (
	"net/http"

	"invoicer/internal/refdata"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

// OptionsHandler serves the static dropdown data for the invoice editor
type OptionsHandler struct {
	options refdata.Options
}

func NewOptionsHandler(options refdata.Options) *OptionsHandler {
	return &OptionsHandler{options: options}
}

func (h *OptionsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/options", h.GetOptions)
}

// GetOptions returns countries, US states, currencies, statuses and default fees
// @Summary      Editor options
// @Tags         options
// @Produce      json
// @Success      200  {object}  response.Response{data=refdata.Options}
// @Router       /api/options [get]
func (h *OptionsHandler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.options))
}
