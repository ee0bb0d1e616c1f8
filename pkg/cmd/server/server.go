package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mpapenbr/iracelog-tirestrategy/log"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/config"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/server"
)

var cacheTTL time.Duration

func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "starts the http server for analysis requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddr,
		"addr",
		"a",
		"localhost:8080",
		"http server listen address")
	cmd.Flags().DurationVar(&cacheTTL,
		"cache-ttl",
		5*time.Minute,
		"how long reports of identical requests are reused")
	return cmd
}

func startServer(ctx context.Context) error {
	logger := log.GetFromContext(ctx).Named("server")
	logger.Debug("Config:",
		log.String("addr", config.ServerAddr),
		log.Any("strategy", config.StrategyArgs),
	)
	srv := server.NewServer(
		server.WithDefaults(config.StrategyArgs),
		server.WithCacheTTL(cacheTTL),
		server.WithLogger(logger))

	handler := otelhttp.NewHandler(srv.Handler(), "tirestrat")
	//nolint:gosec // by design
	httpServer := &http.Server{
		Addr:    config.ServerAddr,
		Handler: h2c.NewHandler(newCORS().Handler(handler), &http2.Server{}),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting http server", log.String("addr", config.ServerAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server could not be started", log.ErrorField(err))
			return err
		}
	case <-ctx.Done():
		logger.Debug("Got signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error shutting down server", log.ErrorField(err))
		}
	}
	logger.Info("Server terminated")
	return nil
}

func newCORS() *cors.Cors {
	// allow all origins
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         int(2 * time.Hour / time.Second),
	})
}
