package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/veligo/charterdesk/internal/api"
	payment "github.com/veligo/charterdesk/internal/client"
	"github.com/veligo/charterdesk/internal/notify"
	"github.com/veligo/charterdesk/internal/ports"
	"github.com/veligo/charterdesk/internal/repository"
	"github.com/veligo/charterdesk/internal/service"
	"github.com/veligo/charterdesk/internal/utils"
	"github.com/veligo/charterdesk/pkg/config"
	"github.com/veligo/charterdesk/pkg/health"
)

const version = "1.0.0"

type App struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	db       *pgxpool.Pool
	amqpConn *amqp.Connection
}

func NewApp(cfg *config.Config, logger *zap.Logger) *App {
	return &App{
		config: cfg,
		logger: logger,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.setupDatabase(ctx); err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}

	if err := a.setupServer(); err != nil {
		return fmt.Errorf("server setup failed: %w", err)
	}

	return nil
}

func (a *App) setupDatabase(ctx context.Context) error {
	poolCfg, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	return nil
}

func (a *App) setupNotifier() ports.Notifier {
	if a.config.AMQP.URL == "" {
		a.logger.Warn("AMQP_URL not set, reservation events will be dropped")
		return notify.NopNotifier{}
	}

	conn, err := amqp.Dial(a.config.AMQP.URL)
	if err != nil {
		a.logger.Error("amqp dial failed, falling back to nop notifier", zap.Error(err))
		return notify.NopNotifier{}
	}
	a.amqpConn = conn

	notifier, err := notify.NewAMQPNotifier(conn, a.config.AMQP.Exchange, a.logger)
	if err != nil {
		a.logger.Error("amqp exchange setup failed, falling back to nop notifier", zap.Error(err))
		return notify.NopNotifier{}
	}
	return notifier
}

func (a *App) setupServer() error {
	services := a.setupServices()
	router := a.setupRouter(services)

	a.server = &http.Server{
		Addr:         a.config.Server.Address,
		Handler:      router,
		WriteTimeout: a.config.Server.WriteTimeout,
		ReadTimeout:  a.config.Server.ReadTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	return nil
}

type Services struct {
	BookingService ports.BookingService
}

func (a *App) setupServices() Services {
	reservations := repository.NewReservationRepository(a.db)
	slots := repository.NewSlotRepository(a.db)
	vessels := repository.NewVesselRepository(a.db)

	gateway := payment.NewClient(
		a.config.Stripe.SecretKey,
		payment.WithCurrency(a.config.Stripe.Currency),
		payment.WithRedirectURLs(a.config.Stripe.SuccessURL, a.config.Stripe.CancelURL),
		payment.WithTimeout(a.config.Stripe.Timeout),
	)

	bookingService := service.NewBookingService(
		reservations,
		slots,
		vessels,
		gateway,
		a.setupNotifier(),
		service.Config{
			DepositPercent:      a.config.Booking.DepositPercent,
			DefaultSkipperPrice: a.config.Booking.DefaultSkipperPrice,
			MaxCharterDays:      a.config.Booking.MaxCharterDays,
		},
		a.logger,
	)

	return Services{BookingService: bookingService}
}

func (a *App) setupRouter(services Services) http.Handler {
	router := http.NewServeMux()
	const versionPrefix = "/v1"

	router.HandleFunc(versionPrefix+"/health", health.HealthGet(version))

	bookingHandler := utilsAllowedJSON(
		api.BookingHandler(services.BookingService),
		"POST", "GET", "PATCH",
	)
	router.HandleFunc(versionPrefix+"/bookings", bookingHandler)

	router.HandleFunc(versionPrefix+"/availability",
		utilsAllowedJSON(api.AvailabilityHandler(services.BookingService), "GET"))
	router.HandleFunc(versionPrefix+"/quote",
		utilsAllowedJSON(api.QuoteHandler(services.BookingService), "GET"))
	router.HandleFunc(versionPrefix+"/payments/webhook",
		utilsAllowedJSON(api.PaymentWebhookHandler(services.BookingService), "POST"))
	router.HandleFunc(versionPrefix+"/payments/confirm",
		utilsAllowedJSON(api.PaymentConfirmHandler(services.BookingService), "GET"))

	return router
}

func utilsAllowedJSON(next http.HandlerFunc, methods ...string) http.HandlerFunc {
	return utils.AllowedMethods(
		utils.AllowedContentTypes(next, "application/json"),
		methods...,
	)
}

func (a *App) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		a.logger.Info("starting server", zap.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-shutdown:
		a.logger.Info("starting graceful shutdown")
		return a.Shutdown(ctx)
	case <-ctx.Done():
		return a.Shutdown(ctx)
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if a.amqpConn != nil {
		a.amqpConn.Close()
	}
	if a.db != nil {
		a.db.Close()
	}

	return nil
}

func main() {
	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	app := NewApp(cfg, logger)
	if err := app.Initialize(ctx); err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Run(ctx); err != nil {
		logger.Fatal("application error", zap.Error(err))
	}
}
