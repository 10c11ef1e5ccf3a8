package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alphasignals/internal/audit"
	"alphasignals/internal/cache"
	"alphasignals/internal/config"
	cronrunner "alphasignals/internal/cron"
	"alphasignals/internal/db"
	"alphasignals/internal/handler"
	"alphasignals/internal/logger"
	gormrepository "alphasignals/internal/repository/gorm"
	"alphasignals/internal/service"
	"alphasignals/internal/session"
	"alphasignals/internal/stream"
)

func main() {
	cfgPath := os.Getenv("AS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("AS_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	queryCache := cache.New(cfg.Cache.StaleAfter, logger)

	var hub *stream.Hub
	if cfg.Stream.Enabled {
		hub = stream.NewHub(cfg.Stream.SendBuffer, cfg.Stream.MaxSubscriber, logger)
	}

	signalSvc := &service.SignalService{
		Repo:   store,
		Cache:  queryCache,
		Events: hub,
		Logger: logger,
	}
	unlockSvc := &service.UnlockService{
		Repo:   store,
		Cache:  queryCache,
		Events: hub,
		Logger: logger,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	sessions := session.NewProvider(cfg.Auth)
	engine.Use(session.Middleware(sessions))

	recorder := &audit.Recorder{Repo: store, Logger: logger}
	if cfg.Audit.Enabled {
		engine.Use(recorder.Middleware())
	}

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	signalHandler := &handler.SignalHandler{
		Signals: signalSvc,
		Unlocks: unlockSvc,
		Logger:  logger,
	}
	signalHandler.Register(engine)
	profileHandler := &handler.ProfileHandler{Signals: signalSvc}
	profileHandler.Register(engine)
	if hub != nil {
		hub.Register(engine)
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)

		// Keep the global signals view warm so the first anonymous read
		// after a quiet period is served from cache.
		_, err = cronRunner.Add(cfg.Cron.WarmSpec, func(ctx context.Context) {
			if _, err := signalSvc.ListSignals(ctx); err != nil {
				logger.Warn("signals cache warm failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register cache warm failed", zap.Error(err))
		}

		if cfg.Audit.Enabled {
			_, err = cronRunner.Add(cfg.Cron.AuditPrune, func(ctx context.Context) {
				n, err := recorder.Prune(ctx, cfg.Audit.Retention)
				if err != nil {
					logger.Warn("audit prune failed", zap.Error(err))
					return
				}
				if n > 0 {
					logger.Info("pruned audit logs", zap.Int64("count", n))
				}
			})
			if err != nil {
				logger.Warn("cron register audit prune failed", zap.Error(err))
			}
		}

		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
