package handler

import (
	"net/http"

	"invoicer/internal/apperr"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError answers with the status and hint carried by err. The full
// error is attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	_ = c.Error(err)
	c.JSON(status, response.Error(status, apperr.Hint(err)))
}

func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}
