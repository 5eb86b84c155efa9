package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jasper9/nbastats.fun/internal/adapters/broadcast"
	"github.com/jasper9/nbastats.fun/internal/adapters/feed"
	"github.com/jasper9/nbastats.fun/internal/adapters/history"
	"github.com/jasper9/nbastats.fun/internal/adapters/http/api"
	"github.com/jasper9/nbastats.fun/internal/adapters/rewrite"
	"github.com/jasper9/nbastats.fun/internal/app"
	"github.com/jasper9/nbastats.fun/internal/config"
	"github.com/jasper9/nbastats.fun/internal/domain/compose"
	"github.com/jasper9/nbastats.fun/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout = 10 * time.Second
	// Write timeout stays unset: /games/{id}/live holds a WebSocket open
	// for the length of a game.
	writeTimeout      = 0
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Local overrides; absence of a .env file is not an error.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := history.NewFileStore(cfg.HistoryDir)
	if err != nil {
		log.Error(ctx, "history store setup failed", logger.Error(err))
		return
	}

	feedClient := feed.New(cfg.FeedBaseURL, cfg.FeedAPIKey,
		feed.WithCacheTTL(time.Duration(cfg.FeedCacheTTLSeconds)*time.Second))

	// Without a configured rewrite endpoint, commentary falls back to the
	// built-in phrasing.
	var rewriter compose.Rewriter = rewrite.Noop{}
	if cfg.RewriteURL != "" {
		rewriter = rewrite.NewHTTP(cfg.RewriteURL,
			rewrite.WithTimeout(time.Duration(cfg.RewriteTimeoutMS)*time.Millisecond))
	}

	hub := broadcast.NewHub()

	svc := app.New(feedClient, store, rewriter, hub,
		app.WithLogger(log),
		app.WithPollInterval(time.Duration(cfg.PollIntervalSeconds)*time.Second),
		app.WithIdlePollInterval(time.Duration(cfg.IdlePollIntervalSeconds)*time.Second),
		app.WithPostgameGrace(time.Duration(cfg.PostgameGraceSeconds)*time.Second),
		app.WithQueueSize(cfg.QueueSize),
		app.WithMinLeadAnnounce(cfg.MinLeadAnnounce),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "service start failed", logger.Error(err))
		return
	}
	defer svc.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, hub)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
