// Package server runs the HTTP and gRPC listeners until the context is
// cancelled, then shuts both down gracefully.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ruizhu/shopapi/internal/kernel"
	"github.com/ruizhu/shopapi/pkg/grpc"
	"github.com/ruizhu/shopapi/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Run serves app until ctx is done or a listener fails.
func Run(ctx context.Context, app *kernel.App) error {
	cfg := app.Config

	httpSrv := &http.Server{
		Addr:              cfg.API.Addr(),
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	grpcAddr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("grpc: listen on %s: %w", grpcAddr, err)
	}
	grpcSrv := grpc.New(app.Repo)

	errc := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "addr", httpSrv.Addr, "env", cfg.AppEnv)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		if err := grpcSrv.Serve(lis); err != nil {
			errc <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errc:
		logger.Error("server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	grpcSrv.Stop(shutdownCtx)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("http shutdown: %w", err))
	}
	logger.Info("server stopped")
	return runErr
}
