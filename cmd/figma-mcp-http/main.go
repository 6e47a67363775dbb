// Command figma-mcp-http starts the figma-mcp HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"figma-mcp/internal/server"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Warn().Err(err).Msg("failed to load .env")
		}
	}
	setupLogging()

	cfg := server.Config{
		Port:         getEnv("PORT", "3000"),
		Token:        os.Getenv("MCP_TOKEN"),
		FigmaToken:   os.Getenv("FIGMA_TOKEN"),
		FigmaBaseURL: os.Getenv("FIGMA_BASE_URL"),
		PingInterval: getEnvDuration("SSE_PING_INTERVAL", 30*time.Second),
	}
	if cfg.Token == "" {
		log.Warn().Msg("MCP_TOKEN not set; endpoints will be open. Set MCP_TOKEN to secure.")
	}
	if cfg.FigmaToken == "" {
		log.Warn().Msg("FIGMA_TOKEN not set; tool calls will fail until configured")
	}

	srv := server.New(cfg)
	// WriteTimeout stays unset: SSE streams are long-lived.
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		certFile := os.Getenv("TLS_CERT_FILE")
		keyFile := os.Getenv("TLS_KEY_FILE")
		var err error
		if certFile != "" && keyFile != "" {
			log.Info().Str("port", cfg.Port).Msg("starting figma-mcp server with TLS")
			err = httpServer.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Info().Str("port", cfg.Port).Msg("starting figma-mcp server")
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func setupLogging() {
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
