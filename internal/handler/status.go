package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"crux/internal/service"
)

type StatusHandler struct {
	Status *service.StatusService
}

func (h *StatusHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/events")
	group.GET("/status", h.eventsStatus)
	group.GET("/:id/status", h.eventStatus)
}

func (h *StatusHandler) eventStatus(c *gin.Context) {
	eventID, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || eventID == 0 {
		Error(c, http.StatusBadRequest, "event id must be a positive number", nil)
		return
	}
	status, err := h.Status.EventStatus(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEventID) {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, status, nil)
}

func (h *StatusHandler) eventsStatus(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	limit := atoiDefault(c.Query("limit"), 20)
	skip := atoiDefault(c.Query("skip"), 0)
	statuses, err := h.Status.EventsStatus(c.Request.Context(), query, limit, skip)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, statuses, nil)
}
