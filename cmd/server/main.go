package main

import (
	"chat-relay/contract"
	"chat-relay/infrastructure/httpapi"
	"chat-relay/infrastructure/storage"
	"chat-relay/infrastructure/ws"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so that deferred cleanup (database close)
// always executes before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(ctx, config, logger))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Optional content filter
	filter, err := buildFilter(config, logger)
	if err != nil {
		return exitConfig, err
	}

	// 4. Relay core
	repository := storage.NewMessageRepository(db, logger)
	presence := runtime.NewPresence()
	rooms := runtime.NewRooms()
	router := runtime.NewRouter(logger, repository, presence, rooms, filter,
		config.StoreTimeout, config.RoomHistoryLimit)
	lifecycle := runtime.NewLifecycle(logger, presence, rooms)
	relay := services.NewRelayService(lifecycle, router, repository,
		config.StoreTimeout, config.RoomHistoryLimit, config.PrivateHistoryLimit)

	// 5. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Supervised background workers
	sup := workers.NewSupervisor(logger)
	sup.Add(workers.NewBadgerGCWorker(db, config.GCInterval, logger))
	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 7. HTTP server (WebSocket endpoint + history API)
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(logger, relay,
		config.ConnectionBufferSize, config.DeliveryTimeout))
	httpapi.NewHistoryHandler(logger, relay).Register(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Relay listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 9. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supDone
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(ctx context.Context, config internal.Config, logger *slog.Logger) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// buildFilter loads the censored word list when one is configured.
// Without a list the relay stores content verbatim.
func buildFilter(config internal.Config, logger *slog.Logger) (contract.ContentFilter, error) {
	if config.CensoredFilepath == "" {
		return nil, nil
	}

	mask, err := config.CharacterRune()
	if err != nil {
		return nil, err
	}
	words, err := moderation.LoadWordList(config.CensoredFilepath)
	if err != nil {
		return nil, fmt.Errorf("loading censored words: %w", err)
	}

	logger.Info(fmt.Sprintf("%d unique censored words loaded", len(words)))
	return moderation.NewFilter(words, mask)
}
