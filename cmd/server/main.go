package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crux/internal/client/ifsc"
	"crux/internal/config"
	cronrunner "crux/internal/cron"
	"crux/internal/db"
	"crux/internal/handler"
	"crux/internal/logger"
	gormrepository "crux/internal/repository/gorm"
	"crux/internal/scoring"
	"crux/internal/service"
)

func main() {
	cfgPath := os.Getenv("CRUX_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("CRUX_ENV_ONLY"); envOnlyRaw != "" {
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

	providerHTTP := &http.Client{Timeout: cfg.Provider.Timeout}
	providerClient := ifsc.NewClient(providerHTTP, cfg.Provider.BaseURL, cfg.Provider.Referer, cfg.Provider.CacheTTL)
	store := gormrepository.New(dbConn.Gorm)

	syncService := &service.ResultsSyncService{
		Repo:     store,
		Provider: providerClient,
		Config:   cfg.ResultsSync,
		Logger:   logger,
	}
	orchestrator := &service.ScoringOrchestrator{
		Repo:   store,
		Sync:   syncService,
		Rules:  rulesFromConfig(cfg.Scoring),
		Logger: logger,
	}
	standingsService := &service.StandingsService{Repo: store}
	statusService := &service.StatusService{Repo: store}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	scoringHandler := &handler.ScoringHandler{
		Sync:         syncService,
		Orchestrator: orchestrator,
		Repo:         store,
		Logger:       logger,
	}
	scoringHandler.Register(engine)
	standingsHandler := &handler.StandingsHandler{Standings: standingsService}
	standingsHandler.Register(engine)
	statusHandler := &handler.StatusHandler{Status: statusService}
	statusHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.ScoreEvents, func(ctx context.Context) {
			scorePendingEvents(ctx, store, orchestrator, logger)
		})
		if err != nil {
			logger.Warn("cron register score events failed", zap.Error(err))
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

// scorePendingEvents re-invokes scoring for every event that still has
// unscored predictions. Per-event failures are expected during a season
// (results not published yet) and never stop the sweep.
func scorePendingEvents(ctx context.Context, store *gormrepository.Store, orchestrator *service.ScoringOrchestrator, logger *zap.Logger) {
	eventIDs, err := store.ListUnscoredEventIDs(ctx)
	if err != nil {
		logger.Warn("cron list pending events failed", zap.Error(err))
		return
	}
	for _, eventID := range eventIDs {
		result, err := orchestrator.ScoreEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, service.ErrNoResults) || errors.Is(err, service.ErrRunInProgress) {
				logger.Debug("cron scoring skipped", zap.Uint64("event_id", eventID), zap.Error(err))
				continue
			}
			logger.Warn("cron scoring failed", zap.Uint64("event_id", eventID), zap.Error(err))
			continue
		}
		if result.Processed > 0 {
			logger.Info("cron scoring ok",
				zap.Uint64("event_id", eventID),
				zap.Int("processed", result.Processed),
				zap.Int("leagues", result.Leagues),
			)
		}
	}
}

func rulesFromConfig(cfg config.ScoringConfig) scoring.Rules {
	rules := scoring.Rules{
		Exact: scoring.PositionPoints{
			First:  cfg.ExactFirst,
			Second: cfg.ExactSecond,
			Third:  cfg.ExactThird,
		},
	}
	if cfg.InPodiumEnabled {
		rules.InPodium = &scoring.PositionPoints{
			First:  cfg.InPodiumFirst,
			Second: cfg.InPodiumSecond,
			Third:  cfg.InPodiumThird,
		}
	}
	return rules
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
