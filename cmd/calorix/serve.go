package calorix

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/aiproxy"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the food recognition and macro functions over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required to serve")
		}
		port := cfg.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		if cfg.JWTSecret == "" {
			logger.Warn("JWT_SECRET not set; functions are served without authentication")
		}

		proxy := aiproxy.New(aiproxy.Config{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.OpenAIModel,
			JWTSecret: cfg.JWTSecret,
			Log:       logger,
		})
		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      proxy.Handler(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			logger.Info("serving functions", "addr", srv.Addr, "base_path", aiproxy.BasePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
			close(errc)
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Listen port (default PORT or 8080)")
}
