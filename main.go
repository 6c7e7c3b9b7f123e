// Command hack-chat-simple-bot is the entrypoint for the channel bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Optionally connects to Postgres for the write-only chat archive.
//   - Starts the command engine (one instance per channel session) and the
//     websocket transport with its reconnect loop.
//   - Exposes a minimal HTTP server with /healthz, /status, and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sun-ldigv3/hack-chat-simple-bot/config"
	"github.com/sun-ldigv3/hack-chat-simple-bot/db"
	"github.com/sun-ldigv3/hack-chat-simple-bot/engine"
	"github.com/sun-ldigv3/hack-chat-simple-bot/export"
	"github.com/sun-ldigv3/hack-chat-simple-bot/hackchat"
	"github.com/sun-ldigv3/hack-chat-simple-bot/server"
	"github.com/sun-ldigv3/hack-chat-simple-bot/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config invalid", slog.Any("err", err))
		os.Exit(1)
	}

	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("hack-chat-simple-bot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional write-only chat archive.
	var archive func(engine.Message)
	if cfg.DBDsn != "" {
		database, err := db.Connect(cfg.DBDsn)
		if err != nil {
			slog.Error("failed to open db", slog.Any("err", err))
			os.Exit(1)
		}
		defer func() {
			if err := database.Close(); err != nil {
				slog.Error("failed to close database", slog.Any("err", err))
			}
		}()
		if err := db.Migrate(ctx, database); err != nil {
			slog.Error("failed to migrate db", slog.Any("err", err))
			os.Exit(1)
		}
		channel := cfg.Channel
		archive = func(m engine.Message) {
			if err := db.InsertChatMessage(ctx, database, channel, m.ID, m.Nick, m.Text, m.ObservedAt); err != nil {
				slog.Warn("failed to archive chat message", slog.Any("err", err))
			}
		}
		slog.Info("chat archive enabled")
	}

	// Transport and engine wiring. The client delivers chat events onto the
	// engine queue; the engine sends replies back through the client.
	var client *hackchat.Client
	eng := engine.New(engine.Options{
		Nick:          cfg.Nick,
		HistoryLimit:  cfg.HistoryLimit,
		SweepInterval: cfg.MuteSweepInterval,
		IsAuthorized: func(nick string) bool {
			return strings.HasPrefix(nick, cfg.AdminPrefix)
		},
		Sender:   senderFunc(func(text, mention string) { client.SendChat(text, mention) }),
		Exporter: &export.FileWriter{Dir: cfg.DataDir},
		Archive:  archive,
	})
	client = hackchat.NewClient(cfg.ServerURL, cfg.Channel, cfg.Nick, cfg.ReconnectDelay, eng.Enqueue)

	started := time.Now()
	go eng.Run(ctx)
	go client.Run(ctx)
	go func() {
		if err := server.Start(ctx, cfg.HTTPAddr, func() server.Status {
			return server.Status{
				Channel:   cfg.Channel,
				Nick:      cfg.Nick,
				Connected: client.Connected(),
				UptimeSec: int64(time.Since(started).Seconds()),
			}
		}); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}

// senderFunc adapts a function to engine.Sender.
type senderFunc func(text, mention string)

func (f senderFunc) SendChat(text, mention string) { f(text, mention) }
