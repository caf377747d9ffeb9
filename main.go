// Diagnosis search service. Loads the ICD-O-3 diagnosis vocabulary and
// topography reference, builds the in-memory search snapshot, and serves
// the fuzzy search API over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/idea4rc/diagnosis-search/config"
	"github.com/idea4rc/diagnosis-search/data"
	"github.com/idea4rc/diagnosis-search/logging"
	"github.com/idea4rc/diagnosis-search/scheduler"
	"github.com/idea4rc/diagnosis-search/search"
	"github.com/idea4rc/diagnosis-search/server"
	"github.com/idea4rc/diagnosis-search/vocabularyparser"
)

func main() {
	// Load .env from the working directory, or fall back to the
	// executable's directory for systemd-style deployments
	if err := godotenv.Load(); err != nil {
		ex, exErr := os.Executable()
		if exErr != nil {
			slog.Error("Failed to get executable path", "error", exErr)
			os.Exit(1)
		}

		if chErr := os.Chdir(filepath.Dir(ex)); chErr != nil {
			slog.Error("Failed to change directory", "error", chErr)
			os.Exit(1)
		}

		// Best effort second attempt, env vars may be set externally
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	logging.InitLoggerWithConfig("logs", cfg)

	dataContainer := data.NewContainer()
	dataContainer.SetServerStartTime(time.Now())

	parser := vocabularyparser.NewVocabularyParser(cfg.VocabularySource, cfg.TopographySource, cfg.DataDir)

	engine := search.NewEngine(dataContainer,
		search.WithTableLimit(cfg.ResultTableLimit),
		search.WithWorkers(cfg.SearchWorkers),
	)

	sched := scheduler.NewScheduler(dataContainer, parser)
	if err := sched.Start(); err != nil {
		logging.Error("Scheduler failed to start", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, dataContainer, engine)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
		os.Exit(1)
	}
}
