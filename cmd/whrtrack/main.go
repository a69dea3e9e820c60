package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/vbonduro/whrtrack/internal/ai"
	"github.com/vbonduro/whrtrack/internal/ai/claude"
	"github.com/vbonduro/whrtrack/internal/ai/ollama"
	"github.com/vbonduro/whrtrack/internal/ai/pollinations"
	"github.com/vbonduro/whrtrack/internal/config"
	"github.com/vbonduro/whrtrack/internal/db"
	"github.com/vbonduro/whrtrack/internal/logging"
	"github.com/vbonduro/whrtrack/internal/service"
	"github.com/vbonduro/whrtrack/internal/store"
	"github.com/vbonduro/whrtrack/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	prefs := service.NewPreferenceService(store.NewPreferenceStore(database), logger)
	if _, err := prefs.Load(ctx); err != nil {
		logger.Error("failed to load preferences", "error", err)
		return
	}

	measurements := service.NewMeasurementService(store.NewMeasurementStore(database), prefs, logger)
	meals := service.NewMealService(store.NewMealStore(database), prefs, logger)
	gateway := ai.NewGateway(newCompleter(cfg, logger), cfg.AITimeout, logger)
	coach := service.NewCoachService(gateway, measurements, prefs, logger)

	gin.SetMode(gin.ReleaseMode)
	server := web.NewServer(web.Services{
		Measurements: measurements,
		Meals:        meals,
		Preferences:  prefs,
		Coach:        coach,
	}, logger)

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newCompleter(cfg *config.Config, logger *slog.Logger) ai.Completer {
	switch cfg.AIBackend {
	case "claude":
		logger.Info("using Claude AI backend", "model", cfg.ClaudeModel)
		return claude.New(cfg.ClaudeAPIKey, cfg.ClaudeModel, cfg.ClaudeBaseURL)
	case "ollama":
		logger.Info("using Ollama AI backend", "host", cfg.OllamaHost, "model", cfg.OllamaModel)
		return ollama.New(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("using Pollinations AI backend", "endpoint", cfg.AIEndpoint, "model", cfg.AIModel)
		return pollinations.New(cfg.AIEndpoint, cfg.AIModel)
	}
}
