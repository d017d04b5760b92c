// Package handler exposes a small read-only ops API next to the bot:
// health, the player map, and the live workflow queues.
package handler

import (
	"net/http"

	"wlbot/backend/internal/storage"
	"wlbot/backend/internal/workflow"

	"github.com/gin-gonic/gin"
)

// Handler serves the ops endpoints.
type Handler struct {
	Store   storage.Store
	Apps    *workflow.Applications
	Reports *workflow.Reports

	apiSecret []byte
}

// NewHandler wires the ops API over the live services.
func NewHandler(s storage.Store, apps *workflow.Applications, reps *workflow.Reports, apiSecret string) *Handler {
	return &Handler{
		Store:     s,
		Apps:      apps,
		Reports:   reps,
		apiSecret: []byte(apiSecret),
	}
}

// Register mounts the routes. Everything under /api requires a bearer token
// from GET /auth.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.Healthz)
	r.GET("/auth", h.IssueToken)

	api := r.Group("/api", h.RequireToken)
	api.GET("/players", h.GetPlayers)
	api.GET("/pending", h.GetPending)
	api.GET("/reports", h.GetReports)
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetPlayers(c *gin.Context) {
	players, err := h.Store.Players()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load players"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": players, "count": len(players)})
}

func (h *Handler) GetPending(c *gin.Context) {
	apps := h.Apps.Pending()
	out := make([]gin.H, 0, len(apps))
	for _, a := range apps {
		out = append(out, gin.H{
			"message_id": a.MessageID,
			"nick":       a.Nick,
			"license":    a.License,
			"submitter":  a.SubmitterID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"applications": out, "count": len(out)})
}

func (h *Handler) GetReports(c *gin.Context) {
	reps := h.Reports.Open()
	out := make([]gin.H, 0, len(reps))
	for _, r := range reps {
		out = append(out, gin.H{
			"message_id": r.MessageID,
			"target":     r.TargetNickRaw,
			"status":     r.Status,
		})
	}
	c.JSON(http.StatusOK, gin.H{"reports": out, "count": len(out)})
}
