package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"urlguard/api"
	"urlguard/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the URL check HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(viper.GetViper())
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

		cfgLog := logger.With(zap.String("port", cfg.Port), zap.String("db", cfg.DBPath))

		var history api.HistoryStore
		if cfg.DBPath != "" {
			h, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer h.Close()
			history = h
		}

		server := api.NewServer(api.Config{
			Analyzer:    newAnalyzer(cfg, logger),
			History:     history,
			Logger:      logger.Named("api"),
			RateLimit:   cfg.RatePerMinute,
			CacheWindow: cfg.CacheTTL,
		})
		defer server.Close()

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      server,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			cfgLog.Info("url check service listening")
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			cfgLog.Info("shutting down", zap.String("signal", sig.String()))
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				_ = httpServer.Close()
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "grace period for in-flight requests")
}
