package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"classroom-ai-assistant/internal/config"
	"classroom-ai-assistant/internal/domain/ports/adapter"
	aiAdapters "classroom-ai-assistant/internal/infra/adapters/ai"
	"classroom-ai-assistant/internal/infra/adapters/storage"
	pg "classroom-ai-assistant/internal/infra/db/postgres"
	"classroom-ai-assistant/internal/infra/events"
	"classroom-ai-assistant/internal/infra/logging"
	"classroom-ai-assistant/internal/infra/metrics"
	red "classroom-ai-assistant/internal/infra/redis"
	"classroom-ai-assistant/internal/infra/sched"
	"classroom-ai-assistant/internal/infra/web"
	"classroom-ai-assistant/internal/infra/worker"
	"classroom-ai-assistant/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	classCache := red.NewClassCache(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	videoJobRepo := pg.NewVideoJobRepo(pool)
	analysisJobRepo := pg.NewAnalysisJobRepo(pool, tm)
	metricRepo := pg.NewPerformanceMetricRepo(pool)
	eventRepo := pg.NewScreenshotEventRepo(pool)
	classRepo := pg.NewCachedClassConfigRepo(pg.NewClassConfigRepo(pool), classCache, logger)
	usageRepo := pg.NewUsageRepo(pool)
	directoryRepo := pg.NewUserDirectoryRepo(pool)

	// ---- Object storage ----
	blobs, err := storage.NewS3Storage(ctx, storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("object storage")
	}

	// ---- AI adapter ----
	var ai adapter.AnalysisAdapter
	if cfg.Runtime.Dev && cfg.AI.GeminiKey == "" {
		ai = aiAdapters.NewNoopAnalysis()
		logger.Warn().Msg("AI adapter: noop (dev mode, no gemini key)")
	} else {
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.Model, cfg.AI.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("AI adapter: gemini")
	}
	ai = aiAdapters.NewLimitedAnalysis(ai, cfg.AI.ConcurrentLimit)

	// ---- Use cases ----
	usageUC := usecase.NewUsageUseCase(usageRepo, logger)
	completionUC := usecase.NewCompletionUseCase(videoJobRepo, analysisJobRepo, classRepo, logger)
	reclaimUC := usecase.NewReclaimUseCase(videoJobRepo, cfg.Reclaimer.Timeout, logger)
	taskTimerUC := usecase.NewTaskTimerUseCase(metricRepo, logger)
	attendanceUC := usecase.NewAttendanceUseCase(classRepo, eventRepo, logger)
	analysisUC := usecase.NewAnalysisRunUseCase(analysisJobRepo, videoJobRepo, usageUC, ai, blobs, cfg.AI.CostPerKTokens, logger)

	// ---- Worker pool ----
	workerPool := worker.NewPool(cfg.Worker.PoolSize, logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	// ---- Change-feed dispatch ----
	dispatcher := events.NewDispatcher(workerPool, logger)
	dispatcher.Subscribe("video_jobs", events.VideoJobHandler(completionUC, dispatcher))
	dispatcher.Subscribe("task_observations", events.TaskObservationHandler(taskTimerUC))
	dispatcher.Subscribe("analysis_jobs", events.AnalysisJobHandler(usageUC))

	// ---- Background workers ----
	reclaimWorker := sched.NewReclaimWorker(cfg.Reclaimer.Interval, reclaimUC, logger)
	go func() { _ = reclaimWorker.Run(ctx) }()

	processor := worker.NewAnalysisProcessor(analysisUC, cfg.AI.PollInterval, logger)
	go processor.Start(ctx, workerPool)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Web.SessionSecret, !cfg.Runtime.Dev, cfg.Web.SessionTTL)
	srv := web.NewServer(attendanceUC, videoJobRepo, eventRepo, directoryRepo, usageRepo, dispatcher, auth, cfg.Web.APIKey, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Web.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
