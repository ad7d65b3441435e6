package handler

import (
	"net/http"

	"invoicer/internal/model"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

// AutosaveScheduler is the debouncer behind the autosave routes
type AutosaveScheduler interface {
	Schedule(session, kind, field string, snap model.PartySnapshot) (bool, error)
	CancelSession(session string) int
}

// AutosaveRequest carries the whole party form after one field changed
type AutosaveRequest struct {
	Field string              `json:"field" binding:"required"`
	Party model.PartySnapshot `json:"party"`
}

type AutosaveHandler struct {
	scheduler AutosaveScheduler
}

func NewAutosaveHandler(scheduler AutosaveScheduler) *AutosaveHandler {
	return &AutosaveHandler{scheduler: scheduler}
}

func (h *AutosaveHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/autosave")
	{
		group.POST("/:session/:kind", h.Schedule)
		group.DELETE("/:session", h.Cancel)
	}
}

// Schedule queues a debounced profile save
// @Summary      Autosave party form
// @Description  Restarts the save timer for the edited field. Progress is streamed on /ws; names shorter than two characters are not saved.
// @Tags         autosave
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        session  path      string                   true  "Editor session"
// @Param        kind     path      string                   true  "customer or company"
// @Param        payload  body      handler.AutosaveRequest  true  "Edited form"
// @Success      202      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Router       /api/autosave/{session}/{kind} [post]
func (h *AutosaveHandler) Schedule(c *gin.Context) {
	var req AutosaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	scheduled, err := h.scheduler.Schedule(c.Param("session"), c.Param("kind"), req.Field, req.Party)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, response.Success(http.StatusAccepted, gin.H{"scheduled": scheduled}))
}

// Cancel drops pending saves for an abandoned form
// @Summary      Cancel autosave session
// @Tags         autosave
// @Security     BearerAuth
// @Produce      json
// @Param        session  path      string  true  "Editor session"
// @Success      200      {object}  response.Response{data=object}
// @Router       /api/autosave/{session} [delete]
func (h *AutosaveHandler) Cancel(c *gin.Context) {
	stopped := h.scheduler.CancelSession(c.Param("session"))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"cancelled": stopped}))
}
