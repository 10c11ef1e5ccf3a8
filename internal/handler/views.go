package handler

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"alphasignals/internal/models"
	"alphasignals/internal/repository"
)

type creatorView struct {
	Username   string `json:"username"`
	AlphaScore int    `json:"alpha_score"`
	AlphaTier  string `json:"alpha_tier"`
}

type signalView struct {
	ID          string `json:"id"`
	CreatorID   string `json:"creator_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Prediction is redacted for locked signals the viewer has not paid
	// for and does not own.
	Prediction string `json:"prediction,omitempty"`

	Confidence     int    `json:"confidence"`
	ConfidenceBand string `json:"confidence_band"`

	StakeAmount decimal.Decimal `json:"stake_amount"`
	StakeToken  string          `json:"stake_token"`

	Category       string    `json:"category"`
	TimeHorizon    string    `json:"time_horizon"`
	ResolutionTime time.Time `json:"resolution_time"`
	TimeRemaining  string    `json:"time_remaining"`

	IsLocked    bool            `json:"is_locked"`
	Unlocked    bool            `json:"unlocked"`
	UnlockPrice decimal.Decimal `json:"unlock_price"`

	Status           string  `json:"status"`
	ResolutionResult *bool   `json:"resolution_result,omitempty"`
	ResolutionNotes  *string `json:"resolution_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Creator *creatorView `json:"creator"`
}

// newSignalView shapes one listed signal for the viewer, applying the
// locked-content redaction and the derived display fields.
func newSignalView(item repository.SignalWithCreator, viewerID string, unlocked map[string]struct{}, now time.Time) signalView {
	sig := item.Signal

	_, paid := unlocked[sig.ID]
	visible := !sig.IsLocked || paid || (viewerID != "" && sig.CreatorID == viewerID)

	view := signalView{
		ID:               sig.ID,
		CreatorID:        sig.CreatorID,
		Title:            sig.Title,
		Description:      sig.Description,
		Confidence:       sig.Confidence,
		ConfidenceBand:   confidenceBand(sig.Confidence),
		StakeAmount:      sig.StakeAmount,
		StakeToken:       sig.StakeToken,
		Category:         sig.Category,
		TimeHorizon:      sig.TimeHorizon,
		ResolutionTime:   sig.ResolutionTime,
		TimeRemaining:    formatTimeRemaining(sig.ResolutionTime, now),
		IsLocked:         sig.IsLocked,
		Unlocked:         paid,
		UnlockPrice:      sig.UnlockPrice,
		Status:           sig.Status,
		ResolutionResult: sig.ResolutionResult,
		CreatedAt:        sig.CreatedAt,
		UpdatedAt:        sig.UpdatedAt,
	}
	if visible {
		view.Prediction = sig.Prediction
		view.ResolutionNotes = sig.ResolutionNotes
	}

	switch item.Creator.State {
	case repository.ProfileJoinValid:
		view.Creator = &creatorView{
			Username:   item.Creator.Username,
			AlphaScore: item.Creator.AlphaScore,
			AlphaTier:  models.AlphaTier(item.Creator.AlphaScore),
		}
	case repository.ProfileJoinMissing, repository.ProfileJoinMalformed:
		view.Creator = nil
	}

	return view
}

func confidenceBand(confidence int) string {
	switch {
	case confidence >= 80:
		return "high"
	case confidence >= 60:
		return "medium"
	default:
		return "low"
	}
}

// formatTimeRemaining renders the countdown to resolution the way the
// signal cards display it: "2d 4h", "3h", or "Expired".
func formatTimeRemaining(until, now time.Time) string {
	diff := until.Sub(now)
	days := int(diff.Hours()) / 24
	hours := int(diff.Hours()) % 24
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return "Expired"
}
