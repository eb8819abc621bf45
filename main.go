package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AgentChief/accredis/ai"
	"github.com/AgentChief/accredis/config"
	"github.com/AgentChief/accredis/database"
	"github.com/AgentChief/accredis/handlers"
	"github.com/AgentChief/accredis/metrics"
	"github.com/AgentChief/accredis/middleware"
	"github.com/AgentChief/accredis/routes"
	"github.com/AgentChief/accredis/services"
	"github.com/AgentChief/accredis/utils"
	"github.com/AgentChief/accredis/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "accredis",
		Short: "Compliance management API for general practice clinics",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(setActiveCmd("activate", "Allow an account to log in again", true))
	cmd.AddCommand(setActiveCmd("deactivate", "Block an account from logging in", false))
	return cmd
}

func setActiveCmd(use, short string, active bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			store, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName, logger)
			if err != nil {
				return err
			}
			defer store.Disconnect()

			ttl, _ := cfg.TokenTTL()
			creds := services.NewCredentialStore(store.Users(), store.Clinics(),
				utils.NewTokenIssuer([]byte(cfg.JWTSecret), ttl), logger)
			if err := creds.SetActive(ctx, email, active); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %sd\n", email, use)
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	return cmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	// Database
	store, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer store.Disconnect()

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to ensure indexes")
		return err
	}

	metrics.Init()

	hub := websocket.NewHub(logger, cfg.CORSOrigins)
	go hub.Run(ctx)

	ttl, _ := cfg.TokenTTL()
	tokens := utils.NewTokenIssuer([]byte(cfg.JWTSecret), ttl)
	aiSettings := cfg.AISettings()
	gateway := ai.NewGateway(aiSettings, nil, logger)

	creds := services.NewCredentialStore(store.Users(), store.Clinics(), tokens, logger)
	tenants := services.NewTenantRegistry(store.Clinics(), store.Users(), cfg.TenantIsolation, logger)
	docs := services.NewDocumentEngine(store.Documents(), store.Audits(), tenants, gateway, hub, logger)
	risks := services.NewRiskRegister(store.Risks(), tenants, hub, logger)

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithTrustedProxies(proxies)
	go limiter.Run(ctx)

	h := &handlers.Handler{
		Auth:      creds,
		Clinics:   tenants,
		Documents: docs,
		Risks:     risks,
		Settings:  aiSettings,
		DB:        store,
		Feed:      hub,
		Log:       logger,
	}
	router := routes.NewRouter(h, routes.Options{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		AuthLimiter: limiter,
		Auth:        creds,
	})

	// HTTP server configuration
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("tenant_isolation", cfg.TenantIsolation).
			Bool("ai_configured", aiSettings.Snapshot().Configured()).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error().Err(err).Msg("HTTP server failed")
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server forced shutdown")
	}
	logger.Info().Msg("server stopped")
	return nil
}
