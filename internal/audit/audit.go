package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alphasignals/internal/models"
	"alphasignals/internal/repository"
	"alphasignals/internal/session"
)

// Recorder persists write-request audit rows, best effort. Failures are
// logged at debug and never affect the request.
type Recorder struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// Middleware records API write requests after completion.
func (r *Recorder) Middleware() gin.HandlerFunc {
	if r == nil || r.Repo == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		method := strings.ToUpper(c.Request.Method)
		if !strings.HasPrefix(path, "/api/") {
			return
		}
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return
		}

		status := c.Writer.Status()
		var actor *string
		if p, ok := session.PrincipalFromContext(c.Request.Context()); ok {
			uid := p.UserID
			actor = &uid
		}

		details, err := json.Marshal(map[string]any{
			"method":   method,
			"path":     path,
			"status":   status,
			"duration": time.Since(start).String(),
		})
		if err != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		insertErr := r.Repo.InsertAuditLog(ctx, &models.AuditLog{
			ActorID: actor,
			Action:  "http_write",
			Level:   levelFromStatus(status),
			Details: datatypes.JSON(details),
		})
		if insertErr != nil && r.Logger != nil {
			r.Logger.Debug("audit insert failed", zap.Error(insertErr))
		}
	}
}

// Prune deletes audit rows older than the retention window.
func (r *Recorder) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if r == nil || r.Repo == nil || retention <= 0 {
		return 0, nil
	}
	return r.Repo.DeleteAuditLogsBefore(ctx, time.Now().UTC().Add(-retention))
}

func levelFromStatus(status int) string {
	if status >= 500 {
		return "error"
	}
	if status >= 400 {
		return "warn"
	}
	return "info"
}
