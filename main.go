package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/chess-roundrobin/internal/chesscom"
	"github.com/mauv0809/chess-roundrobin/internal/club"
	"github.com/mauv0809/chess-roundrobin/internal/config"
	"github.com/mauv0809/chess-roundrobin/internal/database"
	server "github.com/mauv0809/chess-roundrobin/internal/http"
	"github.com/mauv0809/chess-roundrobin/internal/metrics"
	"github.com/mauv0809/chess-roundrobin/internal/notifier"
	"github.com/mauv0809/chess-roundrobin/internal/notifier/slack"
	"github.com/mauv0809/chess-roundrobin/internal/processor"
	"github.com/mauv0809/chess-roundrobin/internal/pubsub"
	"github.com/mauv0809/chess-roundrobin/internal/scheduler"
	"github.com/mauv0809/chess-roundrobin/internal/tournament"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, dbTeardown, err := database.InitDB(cfg.DBName)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	entries := make([]tournament.RosterEntry, 0, len(cfg.Roster))
	for _, e := range cfg.Roster {
		entries = append(entries, tournament.RosterEntry{Name: e.Name, Username: e.Username})
	}
	initial, err := tournament.New(entries)
	if err != nil {
		log.Fatalf("Invalid roster: %s", err)
	}
	log.Info("Tournament created", "players", len(initial.Players), "pairings", len(initial.Pairings))

	clubStore := club.New(db, initial)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	chessClient := chesscom.NewClient(chesscom.Options{
		BaseURL:           cfg.ChessCom.BaseURL,
		Timeout:           cfg.ChessCom.Timeout,
		RequestsPerSecond: cfg.ChessCom.RequestsPerSecond,
		UserAgent:         cfg.ChessCom.UserAgent,
	})
	history := chesscom.NewHistory(chessClient, metricsSvc, cfg.ChessCom.LookbackMonths)

	var notif notifier.Notifier = notifier.LogNotifier{}
	if cfg.Slack.Enabled() {
		notif = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	} else {
		log.Info("Slack not configured, notifications will only be logged")
	}

	pubsubClient, err := pubsub.New(ctx, cfg.ProjectID)
	if err != nil {
		log.Fatalf("Failed to initialize pubsub: %s", err)
	}
	defer pubsubClient.Close()

	proc := processor.New(clubStore, history, notif, metricsSvc, pubsubClient, cfg.Sync.MaxParallel)
	sched := scheduler.New(proc, cfg.Sync.Interval)
	if cfg.Sync.OnStart {
		sched.Enable(ctx)
	}

	s := server.NewServer(
		ctx,
		clubStore,
		metricsSvc,
		metricsHandler,
		cfg,
		notif,
		proc,
		sched,
		pubsubClient,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Abort any run in progress; a cancelled run commits nothing.
		proc.CancelRun()
		stop()
		sched.Stop()

		// Create a context with a timeout for the shutdown.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
