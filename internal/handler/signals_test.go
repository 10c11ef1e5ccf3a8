package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"alphasignals/internal/cache"
	"alphasignals/internal/models"
	"alphasignals/internal/repository"
	"alphasignals/internal/service"
	"alphasignals/internal/session"
)

type stubRepo struct {
	signals     []repository.SignalWithCreator
	unlockedErr error
}

func (s *stubRepo) ListSignals(ctx context.Context) ([]repository.SignalWithCreator, error) {
	return s.signals, nil
}
func (s *stubRepo) GetSignalByID(ctx context.Context, id string) (*models.Signal, error) {
	return nil, nil
}
func (s *stubRepo) InsertSignal(ctx context.Context, item *models.Signal) error { return nil }
func (s *stubRepo) InsertUnlock(ctx context.Context, item *models.UnlockRecord) error {
	return nil
}
func (s *stubRepo) ListUnlockedSignalIDs(ctx context.Context, userID string) ([]string, error) {
	return nil, s.unlockedErr
}
func (s *stubRepo) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return nil, nil
}
func (s *stubRepo) UpsertProfile(ctx context.Context, item *models.Profile) error { return nil }
func (s *stubRepo) InsertAuditLog(ctx context.Context, item *models.AuditLog) error {
	return nil
}
func (s *stubRepo) DeleteAuditLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newSignalRouter(repo *stubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := &service.SignalService{Repo: repo, Cache: cache.New(0, nil)}
	h := &SignalHandler{Signals: svc, Logger: zap.NewNop()}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := session.WithPrincipal(c.Request.Context(), session.Principal{UserID: "u1", Username: "alice"})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	h.Register(r)
	return r
}

func TestList_UnlockedLookupFailureStillRendersLocked(t *testing.T) {
	repo := &stubRepo{
		signals: []repository.SignalWithCreator{{
			Signal: models.Signal{
				ID:          "s1",
				CreatorID:   "creator",
				Title:       "BTC breaks 100k",
				Prediction:  "Closes above 100k by Friday",
				Confidence:  85,
				IsLocked:    true,
				UnlockPrice: decimal.NewFromInt(5),
				Status:      models.StatusActive,
			},
			Creator: repository.ProfileJoin{State: repository.ProfileJoinMissing},
		}},
		unlockedErr: errors.New("gateway down"),
	}
	r := newSignalRouter(repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/signals", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d want 200 (list must degrade, not fail)", w.Code)
	}

	var resp struct {
		Code int          `json:"code"`
		Data []signalView `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("signals=%d want 1", len(resp.Data))
	}
	if resp.Data[0].Unlocked {
		t.Fatalf("signal must render locked when the unlocked lookup fails")
	}
	if resp.Data[0].Prediction != "" {
		t.Fatalf("locked prediction leaked: %q", resp.Data[0].Prediction)
	}
}

func TestEstimate(t *testing.T) {
	r := newSignalRouter(&stubRepo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/signals/estimate?stake=100", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", w.Code)
	}
	var resp struct {
		Data struct {
			UnlockPrice decimal.Decimal `json:"unlock_price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Data.UnlockPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unlock_price=%s want 10", resp.Data.UnlockPrice)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/signals/estimate?stake=-5", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400 for non-positive stake", w.Code)
	}
}
