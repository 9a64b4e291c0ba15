package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crux/internal/repository"
	"crux/internal/service"
)

type ScoringHandler struct {
	Sync         *service.ResultsSyncService
	Orchestrator *service.ScoringOrchestrator
	Repo         repository.Repository
	Logger       *zap.Logger
}

func (h *ScoringHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/scoring")
	group.POST("/fetch-results", h.fetchResults)
	group.POST("/score-event", h.scoreEvent)
	group.GET("/runs", h.listRuns)
}

type scoringRequest struct {
	EventID string `json:"eventId"`
}

type fetchResultsResponse struct {
	Success             bool `json:"success"`
	CategoriesProcessed int  `json:"categoriesProcessed"`
}

type scoreEventResponse struct {
	Success   bool   `json:"success"`
	Processed int    `json:"processed"`
	Leagues   int    `json:"leagues"`
	RunID     string `json:"runId,omitempty"`
}

func (h *ScoringHandler) fetchResults(c *gin.Context) {
	eventID, ok := h.bindEventID(c)
	if !ok {
		return
	}
	result, err := h.Sync.Sync(c.Request.Context(), eventID)
	if err != nil {
		h.logWarn("fetch results failed", err, eventID)
		Error(c, statusFor(err), err.Error(), nil)
		return
	}
	Ok(c, fetchResultsResponse{Success: true, CategoriesProcessed: result.CategoriesProcessed}, nil)
}

func (h *ScoringHandler) scoreEvent(c *gin.Context) {
	eventID, ok := h.bindEventID(c)
	if !ok {
		return
	}
	result, err := h.Orchestrator.ScoreEvent(c.Request.Context(), eventID)
	if err != nil {
		h.logWarn("score event failed", err, eventID)
		Error(c, statusFor(err), err.Error(), map[string]any{
			"processed": result.Processed,
			"run_id":    result.RunID,
		})
		return
	}
	Ok(c, scoreEventResponse{
		Success:   true,
		Processed: result.Processed,
		Leagues:   result.Leagues,
		RunID:     result.RunID,
	}, map[string]any{"categories": result.Categories})
}

func (h *ScoringHandler) listRuns(c *gin.Context) {
	params := repository.ListRunsParams{
		Limit:  atoiDefault(c.Query("limit"), 50),
		Offset: atoiDefault(c.Query("offset"), 0),
	}
	if raw := strings.TrimSpace(c.Query("event_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid event_id", nil)
			return
		}
		params.EventID = &id
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		params.Status = &status
	}
	runs, err := h.Repo.ListScoringRuns(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, runs, nil)
}

func (h *ScoringHandler) bindEventID(c *gin.Context) (uint64, bool) {
	var req scoringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return 0, false
	}
	eventID, err := strconv.ParseUint(strings.TrimSpace(req.EventID), 10, 64)
	if err != nil || eventID == 0 {
		Error(c, http.StatusBadRequest, "eventId must be a positive number", nil)
		return 0, false
	}
	return eventID, true
}

func (h *ScoringHandler) logWarn(msg string, err error, eventID uint64) {
	if h.Logger == nil {
		return
	}
	h.Logger.Warn(msg, zap.Uint64("event_id", eventID), zap.Error(err))
}

func statusFor(err error) int {
	var syncErr *service.SyncError
	switch {
	case errors.Is(err, service.ErrInvalidEventID):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoResults),
		errors.Is(err, service.ErrNoLeagues),
		errors.Is(err, service.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRunInProgress):
		return http.StatusConflict
	case errors.As(err, &syncErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func atoiDefault(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
