package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"alphasignals/internal/models"
	"alphasignals/internal/service"
)

type ProfileHandler struct {
	Signals *service.SignalService
}

func (h *ProfileHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/profiles")
	group.GET("/:id", h.get)
}

type profileView struct {
	UserID       string  `json:"user_id"`
	Username     string  `json:"username"`
	AlphaScore   int     `json:"alpha_score"`
	AlphaTier    string  `json:"alpha_tier"`
	AccuracyRate float64 `json:"accuracy_rate"`
	TotalSignals int     `json:"total_signals"`
}

func (h *ProfileHandler) get(c *gin.Context) {
	if h.Signals == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	item, err := h.Signals.GetProfile(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "profile not found", nil)
		return
	}
	Ok(c, profileView{
		UserID:       item.UserID,
		Username:     item.Username,
		AlphaScore:   item.AlphaScore,
		AlphaTier:    models.AlphaTier(item.AlphaScore),
		AccuracyRate: item.AccuracyRate,
		TotalSignals: item.TotalSignals,
	}, nil)
}
