package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/abhinav2805-ux/resumeP/internal/completion"
	"github.com/abhinav2805-ux/resumeP/internal/config"
	"github.com/abhinav2805-ux/resumeP/internal/httpapi"
	"github.com/abhinav2805-ux/resumeP/internal/interview"
	"github.com/abhinav2805-ux/resumeP/internal/logger"
	"github.com/abhinav2805-ux/resumeP/internal/observability"
	"github.com/abhinav2805-ux/resumeP/internal/resume"
	"github.com/abhinav2805-ux/resumeP/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zlog, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	gateway, err := storage.NewGateway(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("storage gateway init failed", zap.Error(err))
	}
	defer gateway.Close()
	if cfg.DatabaseURL == "" {
		zlog.Warn("DATABASE_URL not set, finalized interviews are kept in memory only")
	}

	provider, providerMode, err := completion.New(ctx, completion.Config{
		Mode:         cfg.ProviderMode,
		GroqAPIKey:   cfg.GroqAPIKey,
		GroqAPIURL:   cfg.GroqAPIURL,
		GeminiAPIKey: cfg.GeminiAPIKey,
		Timeout:      cfg.ProviderTimeout,
	})
	if err != nil {
		zlog.Fatal("completion provider init failed", zap.Error(err))
	}
	zlog.Info("completion provider ready",
		zap.String("mode", providerMode),
		zap.String("model", cfg.CompletionModel),
	)

	store := interview.NewStore()
	orchestrator := interview.NewOrchestrator(store, provider, gateway, metrics, zlog, interview.Config{
		Model:              cfg.CompletionModel,
		OpeningTemperature: cfg.OpeningTemperature,
		TurnTemperature:    cfg.TurnTemperature,
		Policy: interview.Policy{
			QuestionLimit:       cfg.QuestionLimit,
			LowScoreStreakLimit: cfg.LowScoreStreakLimit,
			LowScoreThreshold:   cfg.LowScoreThreshold,
			ClosingCuePhrases:   cfg.ClosingCuePhrases,
		},
	})

	extractor := resume.NewStructuredExtractor(provider, zlog, resume.ExtractorConfig{
		Model:       cfg.CompletionModel,
		Temperature: cfg.ExtractionTemperature,
		MaxChars:    cfg.ResumeMaxChars,
	})

	api := httpapi.New(cfg, orchestrator, extractor, resume.PlainTextExtractor{}, gateway, metrics, zlog)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	zlog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("graceful shutdown failed", zap.Error(err))
		_ = httpServer.Close()
	}

	zlog.Info("shutdown complete")
}
