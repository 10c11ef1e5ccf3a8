package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"alphasignals/internal/pricing"
	"alphasignals/internal/service"
	"alphasignals/internal/session"
)

type SignalHandler struct {
	Signals *service.SignalService
	Unlocks *service.UnlockService
	Logger  *zap.Logger
}

func (h *SignalHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/signals")
	group.GET("", h.list)
	group.POST("", h.create)
	group.GET("/estimate", h.estimate)
	group.GET("/unlocked", h.listUnlocked)
	group.GET("/:id/unlock/quote", h.unlockQuote)
	group.POST("/:id/unlock", h.unlock)
}

func (h *SignalHandler) list(c *gin.Context) {
	if h.Signals == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	ctx := c.Request.Context()

	items, err := h.Signals.ListSignals(ctx)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	// The unlocked lookup is auxiliary: if it fails the list still renders,
	// with every locked signal shown locked.
	ids, err := h.Signals.UnlockedSignalIDs(ctx)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("unlocked lookup failed", zap.Error(err))
		}
		ids = nil
	}
	unlocked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unlocked[id] = struct{}{}
	}

	var viewerID string
	if p, ok := session.PrincipalFromContext(ctx); ok {
		viewerID = p.UserID
	}

	now := time.Now()
	views := make([]signalView, 0, len(items))
	for _, item := range items {
		views = append(views, newSignalView(item, viewerID, unlocked, now))
	}
	Ok(c, views, map[string]any{"total": len(views)})
}

type createSignalRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Prediction     string          `json:"prediction"`
	Confidence     int             `json:"confidence"`
	StakeAmount    decimal.Decimal `json:"stake_amount"`
	StakeToken     string          `json:"stake_token"`
	Category       string          `json:"category"`
	TimeHorizon    string          `json:"time_horizon"`
	ResolutionTime time.Time       `json:"resolution_time"`
	UnlockPrice    decimal.Decimal `json:"unlock_price"`
}

func (h *SignalHandler) create(c *gin.Context) {
	if h.Signals == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req createSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	item, err := h.Signals.CreateSignal(c.Request.Context(), service.CreateSignalInput{
		Title:          req.Title,
		Description:    req.Description,
		Prediction:     req.Prediction,
		Confidence:     req.Confidence,
		StakeAmount:    req.StakeAmount,
		StakeToken:     req.StakeToken,
		Category:       strings.ToLower(strings.TrimSpace(req.Category)),
		TimeHorizon:    req.TimeHorizon,
		ResolutionTime: req.ResolutionTime,
		UnlockPrice:    req.UnlockPrice,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	Ok(c, item, nil)
}

// estimate previews the suggested unlock price for a stake before the
// signal is created.
func (h *SignalHandler) estimate(c *gin.Context) {
	stake, err := decimal.NewFromString(strings.TrimSpace(c.Query("stake")))
	if err != nil || !stake.IsPositive() {
		Error(c, http.StatusBadRequest, "stake must be a positive amount", nil)
		return
	}
	price := pricing.EstimateUnlockPrice(stake)
	Ok(c, gin.H{
		"stake_amount": stake,
		"unlock_price": price,
		"pricing":      pricing.Split(price),
	}, nil)
}

func (h *SignalHandler) listUnlocked(c *gin.Context) {
	if h.Signals == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	ids, err := h.Signals.UnlockedSignalIDs(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, ids, map[string]any{"total": len(ids)})
}

func (h *SignalHandler) unlockQuote(c *gin.Context) {
	if h.Unlocks == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	flow := h.Unlocks.NewFlow()
	quote, err := flow.Start(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	Ok(c, quote, nil)
}

type unlockRequest struct {
	UnlockPrice decimal.Decimal `json:"unlock_price"`
}

func (h *SignalHandler) unlock(c *gin.Context) {
	if h.Unlocks == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	rec, err := h.Unlocks.Unlock(c.Request.Context(), id, req.UnlockPrice)
	if err != nil {
		h.writeError(c, err)
		return
	}
	Ok(c, rec, nil)
}

// writeError maps service errors onto the response envelope: authorization
// failures become an auth prompt, validation failures a 400, contention a
// 409, and everything else the gateway error surfaced inline.
func (h *SignalHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		AuthRequired(c)
	case errors.Is(err, service.ErrInvalidInput):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrSignalNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrSignalNotLocked):
		Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrPriceChanged):
		Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrUnlockInFlight):
		Error(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrFlowNotConfirmable):
		Error(c, http.StatusConflict, err.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.Warn("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
