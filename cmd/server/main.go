package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/rs/cors"

	"quiz-relay/domain"
	"quiz-relay/internal"
	"quiz-relay/runtime"
	"quiz-relay/runtime/workers"
	"quiz-relay/services"
	"quiz-relay/transport"
)

// Exit codes to provide meaningful status to the operating system or service
// manager (e.g., systemd).
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
// centralizes error reporting, so every defer fires before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Stores, dispatcher, transport
	registry := runtime.NewRegistry()
	sessions := runtime.NewSessionStore()

	// One shard per worker: a connection's commands always land on the
	// same shard, so they are handled one at a time, in arrival order.
	shards := make([]chan domain.Command, config.NumberOfWorkers)
	for i := range shards {
		shards[i] = make(chan domain.Command, config.BufferSize)
	}
	service := services.NewRelayService(logger, shards, registry, sessions)
	hub := transport.NewHub(logger, registry, service, config.ConnectionBufferSize)
	dispatcher := runtime.NewDispatcher(logger, registry, sessions, hub)

	// 3. Supervised workers: the dispatch shards and the self-stats sampler
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	for _, shard := range shards {
		supervisor.Add(workers.NewDispatchWorker(shard, dispatcher, logger))
	}
	healthState := internal.NewHealthState(config.Environment)
	supervisor.Add(workers.NewSelfStatsWorker(logger, healthState, config.MetricInterval))

	healthSrv := internal.StartHealthServer(logger, config.HealthPort, healthState, registry.Counts)

	// 4. Public surface: websocket endpoint + read-only room info
	router := mux.NewRouter()
	router.HandleFunc("/ws", hub.HandleWS)
	router.HandleFunc("/rooms/{id}", roomInfoHandler(service)).Methods(http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(config.AllowedOrigins, ","),
		AllowedMethods: []string{http.MethodGet},
	}).Handler(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: corsHandler,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Relay listening", "addr", srv.Addr, "environment", config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	supervisorDone := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(supervisorDone)
	}()

	// 5. Wait for a shutdown signal or a fatal server error
	select {
	case err := <-serverErr:
		supervisor.Stop()
		<-supervisorDone
		return exitRuntime, fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down relay")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = healthSrv.Shutdown(shutdownCtx)
	supervisor.Stop()
	<-supervisorDone
	return exitOK, nil
}

// roomInfoHandler exposes the current participant snapshot (and session, if
// one is live) without going through the command pipeline.
func roomInfoHandler(service *services.RelayService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := domain.RoomID(mux.Vars(r)["id"])
		participants := service.Participants(roomID)

		response := map[string]any{
			"roomId":           roomID,
			"participantCount": len(participants),
			"participants":     participants,
		}
		if session, ok := service.Session(roomID); ok {
			response["session"] = session.Snapshot()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}
