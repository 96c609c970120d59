package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"content-backend/pkg/container"
	"content-backend/pkg/logger"
)

func Serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Build the container; any failure here is fatal
	appContainer, err := container.NewContainer(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize container", err)
	}
	defer appContainer.Cleanup()

	// 2. Router
	router := SetupRouter(ctx, appContainer)

	// 3. HTTP server
	port := appContainer.Config.App.Port
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", port),
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 4. Start (non-blocking)
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", map[string]interface{}{
			"port":   port,
			"env":    appContainer.Config.App.Environment,
			"health": fmt.Sprintf("http://localhost:%s/api/v1/health", port),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 5. Graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		logger.Error("Server failed", err)
		return
	}

	logger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server exited gracefully", nil)
}
