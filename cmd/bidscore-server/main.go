package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bidscore/internal/configuration"
	"bidscore/internal/history"
	"bidscore/internal/journal"
	"bidscore/internal/score/rule"
	"bidscore/internal/score/scorer"
	"bidscore/internal/server"
	"bidscore/internal/template"
)

// prepareLogger configures the default slog logger with JSON output to stdout
// at the given level. Unknown levels fall back to info.
func prepareLogger(level string) {
	var logLevel slog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

// The process exits with code 1 when the configuration, templates or flag
// rules cannot be loaded.
func main() {
	configPath := flag.String("config", "/etc/bidscore/config.yaml", "configuration file")
	flag.Parse()
	config, err := configuration.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}
	prepareLogger(config.Logger.Level)

	appCtx, appCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer appCancel()

	templates, err := template.LoadFromFile(config.Scoring.Templates)
	if err != nil {
		slog.Error("Unable to load templates", "error", err)
		os.Exit(1)
	}

	var flagRules []rule.Rule
	if config.Scoring.Flags != "" {
		flagRules, err = rule.LoadFromFile(config.Scoring.Flags, rule.NewEnv)
		if err != nil {
			slog.Error("Unable to load flag rules", "error", err)
			os.Exit(1)
		}
	}

	reports := history.NewReportsRepository(config.Scoring.HistoryLength, config.Scoring.HistoryTtl)
	go reports.Serve()

	var calcJournal scorer.Journal
	if config.Journal.File != "" {
		calcJournal = journal.NewJSONJournal(config.Journal.File, config.Journal.Size, config.Journal.Amount)
	}

	tenderScorer := scorer.NewTenderScorer(templates, scorer.NewFlagsScorer(flagRules), reports, calcJournal)
	srv := server.NewServer(
		config.Server.Address,
		config.Server.Static,
		tenderScorer,
		reports,
		templates,
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			appCancel()
		}
	}()
	slog.Info("Server listening "+config.Server.Address, "templates", len(templates.List()), "flags", len(flagRules))
	<-appCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*10)
	defer shutdownCancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("Server shutdown", "error", err)
	}
	slog.Info("Server stopped")

	reports.Stop()
	if calcJournal != nil {
		calcJournal.Close()
	}
}
