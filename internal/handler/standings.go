package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crux/internal/service"
)

type StandingsHandler struct {
	Standings *service.StandingsService
}

func (h *StandingsHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/leagues")
	group.GET("/:id/standings", h.leagueStandings)
	group.GET("/:id/leaderboard", h.leaderboard)
	group.GET("/:id/standings/:userId", h.userStanding)
}

func (h *StandingsHandler) leagueStandings(c *gin.Context) {
	leagueID := strings.TrimSpace(c.Param("id"))
	if leagueID == "" {
		Error(c, http.StatusBadRequest, "league id required", nil)
		return
	}
	standings, err := h.Standings.LeagueStandings(c.Request.Context(), leagueID)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"standings": standings}, nil)
}

func (h *StandingsHandler) leaderboard(c *gin.Context) {
	leagueID := strings.TrimSpace(c.Param("id"))
	if leagueID == "" {
		Error(c, http.StatusBadRequest, "league id required", nil)
		return
	}
	limit := atoiDefault(c.Query("limit"), 50)
	offset := atoiDefault(c.Query("offset"), 0)
	board, err := h.Standings.Leaderboard(c.Request.Context(), leagueID, limit, offset)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, board, map[string]any{"limit": limit, "offset": offset})
}

func (h *StandingsHandler) userStanding(c *gin.Context) {
	leagueID := strings.TrimSpace(c.Param("id"))
	userID := strings.TrimSpace(c.Param("userId"))
	if leagueID == "" || userID == "" {
		Error(c, http.StatusBadRequest, "league id and user id required", nil)
		return
	}
	standing, err := h.Standings.UserStanding(c.Request.Context(), leagueID, userID)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if standing == nil {
		Error(c, http.StatusNotFound, "standing not found", nil)
		return
	}
	Ok(c, standing, nil)
}
