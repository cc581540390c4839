package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"newsbot/internal/aggregator"
	"newsbot/internal/bot"
	"newsbot/internal/classify"
	"newsbot/internal/config"
	"newsbot/internal/digest"
	"newsbot/internal/fetcher"
	"newsbot/internal/ratelimit"
	"newsbot/internal/scheduler"
	"newsbot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	classifier := newClassifier(ctx, cfg, log)
	agg := aggregator.New(fetcher.New(http.DefaultClient), cfg.Sources, cfg.FetchTimeout, cfg.MaxPerFeed, log)
	builder := digest.NewBuilder(store, cfg.DigestMaxItems)
	limiter := ratelimit.New(cfg.RateLimitCalls, cfg.RateLimitWindow)

	b, err := bot.New(cfg.TelegramBotToken, store, limiter, cfg.PageSize, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	retention := 24 * time.Duration(cfg.RetentionDays) * time.Hour
	pipe := scheduler.NewPipeline(agg, classifier, builder, store, b, retention, log)
	b.SetPipeline(pipe)

	sched := scheduler.NewScheduler(pipe, cfg.DailyHour, cfg.DailyMinute, log)

	log.Info("starting bot", "sources", len(cfg.Sources), "semantic", classifier.SemanticEnabled())

	go sched.Run(ctx)

	b.Run(ctx)

	log.Info("bot stopped")
}

func newClassifier(ctx context.Context, cfg *config.Config, log *slog.Logger) *classify.Classifier {
	if !cfg.SemanticEnabled || cfg.OpenAIAPIKey == "" {
		return classify.NewLexical(log)
	}
	embedder := classify.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	return classify.New(ctx, embedder, cfg.SemanticCutoff, log)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
