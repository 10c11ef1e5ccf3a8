package handler

import (
	"testing"
	"time"

	"alphasignals/internal/models"
	"alphasignals/internal/repository"
)

func lockedItem(creator repository.ProfileJoin) repository.SignalWithCreator {
	return repository.SignalWithCreator{
		Signal: models.Signal{
			ID:         "s1",
			CreatorID:  "creator",
			Title:      "BTC breaks 100k",
			Prediction: "Closes above 100k by Friday",
			Confidence: 85,
			IsLocked:   true,
			Status:     models.StatusActive,
		},
		Creator: creator,
	}
}

func TestNewSignalView_RedactsLockedPrediction(t *testing.T) {
	now := time.Now()
	item := lockedItem(repository.ProfileJoin{State: repository.ProfileJoinMissing})
	notes := "called it"
	item.Signal.ResolutionNotes = &notes

	view := newSignalView(item, "viewer", map[string]struct{}{}, now)
	if view.Prediction != "" {
		t.Fatalf("locked prediction leaked: %q", view.Prediction)
	}
	if view.ResolutionNotes != nil {
		t.Fatalf("locked resolution notes leaked")
	}
	if view.Unlocked {
		t.Fatalf("unlocked should be false")
	}
}

func TestNewSignalView_PaidViewerSeesPrediction(t *testing.T) {
	item := lockedItem(repository.ProfileJoin{State: repository.ProfileJoinMissing})
	unlocked := map[string]struct{}{"s1": {}}

	view := newSignalView(item, "viewer", unlocked, time.Now())
	if view.Prediction != item.Signal.Prediction {
		t.Fatalf("paid viewer should see prediction, got %q", view.Prediction)
	}
	if !view.Unlocked {
		t.Fatalf("unlocked should be true")
	}
}

func TestNewSignalView_CreatorSeesOwnPrediction(t *testing.T) {
	item := lockedItem(repository.ProfileJoin{State: repository.ProfileJoinMissing})

	view := newSignalView(item, "creator", map[string]struct{}{}, time.Now())
	if view.Prediction != item.Signal.Prediction {
		t.Fatalf("creator should see own prediction, got %q", view.Prediction)
	}
}

func TestNewSignalView_AnonymousViewerNeverOwns(t *testing.T) {
	item := lockedItem(repository.ProfileJoin{State: repository.ProfileJoinMissing})
	item.Signal.CreatorID = ""

	view := newSignalView(item, "", map[string]struct{}{}, time.Now())
	if view.Prediction != "" {
		t.Fatalf("anonymous viewer must not match an empty creator id")
	}
}

func TestNewSignalView_UnlockedSignalAlwaysVisible(t *testing.T) {
	item := lockedItem(repository.ProfileJoin{State: repository.ProfileJoinMissing})
	item.Signal.IsLocked = false

	view := newSignalView(item, "", map[string]struct{}{}, time.Now())
	if view.Prediction != item.Signal.Prediction {
		t.Fatalf("free signal should be visible to everyone")
	}
}

func TestNewSignalView_CreatorJoinStates(t *testing.T) {
	valid := repository.ProfileJoin{
		State:      repository.ProfileJoinValid,
		Username:   "alice",
		AlphaScore: 92,
	}
	view := newSignalView(lockedItem(valid), "", map[string]struct{}{}, time.Now())
	if view.Creator == nil {
		t.Fatalf("valid creator dropped")
	}
	if view.Creator.Username != "alice" || view.Creator.AlphaTier != models.TierLegendary {
		t.Fatalf("creator view = %+v", view.Creator)
	}

	for _, state := range []repository.ProfileJoinState{
		repository.ProfileJoinMissing,
		repository.ProfileJoinMalformed,
	} {
		view := newSignalView(lockedItem(repository.ProfileJoin{State: state}), "", map[string]struct{}{}, time.Now())
		if view.Creator != nil {
			t.Fatalf("state %v should render a nil creator", state)
		}
	}
}

func TestConfidenceBand(t *testing.T) {
	cases := []struct {
		confidence int
		want       string
	}{
		{95, "high"},
		{80, "high"},
		{79, "medium"},
		{60, "medium"},
		{59, "low"},
		{1, "low"},
	}
	for _, tc := range cases {
		if got := confidenceBand(tc.confidence); got != tc.want {
			t.Errorf("confidenceBand(%d)=%q want %q", tc.confidence, got, tc.want)
		}
	}
}

func TestFormatTimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		until time.Time
		want  string
	}{
		{now.Add(52 * time.Hour), "2d 4h"},
		{now.Add(24 * time.Hour), "1d 0h"},
		{now.Add(3 * time.Hour), "3h"},
		{now.Add(30 * time.Minute), "Expired"},
		{now.Add(-2 * time.Hour), "Expired"},
	}
	for _, tc := range cases {
		if got := formatTimeRemaining(tc.until, now); got != tc.want {
			t.Errorf("formatTimeRemaining(%v)=%q want %q", tc.until.Sub(now), got, tc.want)
		}
	}
}
