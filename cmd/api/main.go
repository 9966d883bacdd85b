package main

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/kferacho3/BodegaDanes/internal/app"
	"github.com/kferacho3/BodegaDanes/internal/clock"
	"github.com/kferacho3/BodegaDanes/internal/config"
	"github.com/kferacho3/BodegaDanes/internal/email"
	"github.com/kferacho3/BodegaDanes/internal/payments"
	"github.com/kferacho3/BodegaDanes/internal/site"
	"github.com/kferacho3/BodegaDanes/internal/storage/postgres"
	transporthttp "github.com/kferacho3/BodegaDanes/internal/transport/http"
	"github.com/kferacho3/BodegaDanes/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	loadEnvFile(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal().Err(err).Msg("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	clk := clock.NewSystem()
	gateway := payments.NewGateway(cfg.StripeSecretKey)
	verifier := payments.NewWebhookVerifier(cfg.StripeWebhookSecret)
	mailer := email.NewResendMailer(cfg.ResendAPIKey, cfg.SendFromEmail)
	revalidator := site.NewRevalidator(cfg.BaseURL, cfg.RevalidateToken)

	availabilityRepo := postgres.NewAvailabilityRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)

	availabilitySvc := app.NewAvailabilityService(availabilityRepo, clk)
	bookingSvc := app.NewBookingService(bookingRepo, clk)
	catalogSvc := app.NewCatalogService(gateway, bookingRepo)
	checkoutSvc := app.NewCheckoutService(gateway, cfg.BaseURL)
	contactSvc := app.NewContactService(mailer, cfg.OperatorEmail)
	authSvc := app.NewAuthService(
		cfg.AdminEmail, cfg.AdminPasswordHash, cfg.AuthSecret,
		time.Duration(cfg.SessionMaxAgeMin)*time.Minute, clk,
	)
	reconcileSvc := app.NewReconcileService(
		bookingRepo, gateway, mailer, catalogSvc, revalidator, clk,
		logger.With().Str("component", "reconcile").Logger(),
		app.ReconcileConfig{OperatorEmail: cfg.OperatorEmail, BaseURL: cfg.BaseURL},
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/availability", transporthttp.RequireAdmin(authSvc, transporthttp.HandleAvailability(availabilitySvc)))
	mux.Handle("/services", transporthttp.HandleListServices(catalogSvc))
	mux.Handle("/bookings", transporthttp.HandleCreateBooking(bookingSvc))
	mux.Handle("/bookings/lookup", transporthttp.HandleLookupBooking(bookingSvc))
	mux.Handle("/checkout-session", transporthttp.HandleCreateCheckoutSession(checkoutSvc))
	mux.Handle("/stripe/webhook", transporthttp.HandleStripeWebhook(
		verifier, reconcileSvc, logger.With().Str("component", "webhook").Logger(),
	))
	mux.Handle("/contact", transporthttp.HandleContact(contactSvc))
	mux.Handle("/admin/login", transporthttp.HandleAdminLogin(authSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	corsOrigins := parseCSV(cfg.CORSOrigins)
	handler := transporthttp.RequestLogger(transporthttp.CORS(corsOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info().Str("port", cfg.Port).Msg("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
		}
	case <-stopCtx.Done():
		logger.Info().Msg("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("server stopped")
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func loadEnvFile(logger zerolog.Logger) {
	path, err := findEnvFile()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to locate .env")
		return
	}
	if path == "" {
		logger.Warn().Msg(".env not found in current or parent directories")
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to open env file")
		return
	}
	if err := parseEnvFile(logger, file); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to load env file")
	} else {
		logger.Info().Str("path", path).Msg("loaded env file")
	}
	_ = file.Close()
}

func findEnvFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for i := 0; i < 6; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

func parseEnvFile(logger zerolog.Logger, file *os.File) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		value = trimQuotes(value)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			logger.Warn().Str("key", key).Msg("failed to set key from env file")
		}
	}
	return scanner.Err()
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '\'' && value[len(value)-1] == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
