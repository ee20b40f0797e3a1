// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"readiness-workers/internal/common/camunda"
	"readiness-workers/internal/common/config"
	"readiness-workers/internal/common/database"
	"readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/observability"
	"readiness-workers/internal/common/validation"
	"readiness-workers/internal/store"
	"readiness-workers/pkg/registry"

	// Readiness Workers (2)
	crs "readiness-workers/internal/workers/readiness/calculate-readiness-score"
	raa "readiness-workers/internal/workers/readiness/record-assessment-answer"

	// Investor Workers (5)
	ci "readiness-workers/internal/workers/investor/compare-investors"
	gim "readiness-workers/internal/workers/investor/generate-investor-matches"
	lim "readiness-workers/internal/workers/investor/list-investor-matches"
	pi "readiness-workers/internal/workers/investor/prescreen-investors"
	rie "readiness-workers/internal/workers/investor/record-investor-evaluations"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// workerTimeout prefers the per-worker timeout over the handler default.
func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if w, ok := cfg.Workers[taskType]; ok && w.Timeout > 0 {
		return config.GetDuration(w.Timeout)
	}
	return fallback
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.SampleRatio,
	})
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if err := store.New(pg.DB).Migrate(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	// --- Init Redis with retry ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional investor directory) ---
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled() {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully",
			zap.String("investorIndex", cfg.Database.Elasticsearch.InvestorIndex))
	} else {
		zapLog.Info("Elasticsearch not configured, prescreening scores the full investor directory")
	}

	// --- Activity registry and input validation ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	validator, err := validation.NewInputValidator(reg)
	if err != nil {
		zapLog.Fatal("input schema compilation failed", zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	zeebe, err := camunda.NewClient(ctx, camunda.ClientConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	opts := camunda.Options{
		Validator:    validator,
		ErrorHandler: errors.NewErrorHandler(log),
	}

	var workers []*camunda.CamundaWorker
	register := func(taskType string, handler camunda.JobHandler) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		wcfg := config.GetWorkerConfig(cfg, taskType)
		w := camunda.NewWorker(zeebe.GetClient(), taskType, wcfg, handler, opts, log)
		w.Start()
		workers = append(workers, w)
		zapLog.Info("worker started",
			zap.String("taskType", taskType),
			zap.Int("maxJobsActive", wcfg.MaxJobsActive),
			zap.Int("timeout_ms", wcfg.Timeout),
		)
	}

	// --- 1. Readiness Workers (2) ---
	{
		c := raa.LoadConfig()
		c.CacheTTL = cfg.Scoring.CacheTTLDuration()
		c.Timeout = workerTimeout(cfg, raa.TaskType, c.Timeout)
		register(raa.TaskType, raa.NewHandler(c, pg.DB, redis.Client, obs, log))
	}
	{
		c := crs.LoadConfig()
		c.CacheTTL = cfg.Scoring.CacheTTLDuration()
		c.Timeout = workerTimeout(cfg, crs.TaskType, c.Timeout)
		register(crs.TaskType, crs.NewHandler(c, pg.DB, redis.Client, obs, log))
	}

	// --- 2. Investor Workers (5) ---
	{
		c := gim.LoadConfig(cfg.Scoring)
		c.Timeout = workerTimeout(cfg, gim.TaskType, c.Timeout)
		register(gim.TaskType, gim.NewHandler(c, pg.DB, redis.Client, obs, log))
	}
	{
		c := pi.LoadConfig(cfg.Scoring, cfg.Database.Elasticsearch)
		c.Timeout = workerTimeout(cfg, pi.TaskType, c.Timeout)
		var es *elasticsearch.Client
		if esClient != nil {
			es = esClient.Client
		}
		register(pi.TaskType, pi.NewHandler(c, pg.DB, redis.Client, es, obs, log))
	}
	{
		c := ci.LoadConfig(cfg.Scoring)
		c.Timeout = workerTimeout(cfg, ci.TaskType, c.Timeout)
		register(ci.TaskType, ci.NewHandler(c, pg.DB, redis.Client, obs, log))
	}
	{
		c := rie.LoadConfig()
		c.Timeout = workerTimeout(cfg, rie.TaskType, c.Timeout)
		register(rie.TaskType, rie.NewHandler(c, pg.DB, obs, log))
	}
	{
		c := lim.LoadConfig()
		c.DefaultLimit = cfg.Scoring.StoredMatchLimit
		c.Timeout = workerTimeout(cfg, lim.TaskType, c.Timeout)
		register(lim.TaskType, lim.NewHandler(c, pg.DB, obs, log))
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	checks := map[string]func(context.Context) error{
		"postgres": pg.Ping,
		"redis":    redis.Ping,
		"zeebe":    zeebe.HealthCheck,
	}
	if esClient != nil {
		checks["elasticsearch"] = esClient.Ping
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           newHealthMux(cfg.App.Version, checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
