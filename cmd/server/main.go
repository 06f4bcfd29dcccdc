package main

import (
	"context"
	"customer-manager/internal/api"
	"customer-manager/internal/batch"
	"customer-manager/internal/config"
	"customer-manager/internal/domain/customer"
	"customer-manager/internal/event"
	"customer-manager/internal/infrastructure/database/postgres"
	"customer-manager/internal/infrastructure/logging"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"
)

const (
	defaultReportSchedule = "*/15 * * * *"
	defaultReportTimeout  = 60 * time.Second
)

// @title Customer Manager API
// @version 1.0
// @description CRUD API over the customer records of a small print shop.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	publisher, amqpConn := initializeEventPublisher(cfg.RabbitMQ, logger)
	defer closeEventConnection(amqpConn, logger)

	customerService := initializeServices(dbPool, publisher, logger)
	reportJob := batch.NewPaymentStatusReportJob(customerService, logger)
	cronScheduler := startBatchJobs(cfg, logger, reportJob)

	routerCtx, cancelRouter := context.WithCancel(context.Background())
	defer cancelRouter()
	router := api.SetupRouter(routerCtx, customerService, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Application starting...", "env", cfg.App.Env, "relax_db_tls", cfg.Database.RelaxTLS)

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	if err := postgres.EnsureSchema(ctx, dbPool, logger); err != nil {
		logger.Error("Failed to initialize database schema", "error", err)
		dbPool.Close()
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

// initializeEventPublisher returns a no-op publisher when RabbitMQ is disabled
// or unreachable; events are never required for the API to serve.
func initializeEventPublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (event.EventPublisher, *amqp.Connection) {
	if !cfg.Enabled {
		logger.Info("RabbitMQ disabled, customer events will not be published")
		return event.NoopPublisher{}, nil
	}

	conn, err := event.Dial(cfg)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ, customer events will not be published", "error", err)
		return event.NoopPublisher{}, nil
	}
	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to set up RabbitMQ publisher", "error", err)
		_ = conn.Close()
		return event.NoopPublisher{}, nil
	}
	return publisher, conn
}

func closeEventConnection(conn *amqp.Connection, logger *slog.Logger) {
	if conn == nil {
		return
	}
	logger.Info("Closing RabbitMQ connection...")
	if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		logger.Warn("RabbitMQ connection close failed", "error", err)
	}
}

func initializeServices(dbPool postgres.DBPool, publisher event.EventPublisher, logger *slog.Logger) customer.CustomerService {
	logger.Info("Initializing application components...")
	customerRepo := postgres.NewCustomerRepository(dbPool, logger)
	return customer.NewCustomerService(customerRepo, publisher, logger)
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.")
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Application shutdown process complete.")
}

// reportJobTimeout reads batch.paymentStatusReportTimeout, which is configured
// in seconds.
func reportJobTimeout(cfg config.BatchConfig) time.Duration {
	if cfg.PaymentStatusReportTimeout <= 0 {
		return defaultReportTimeout
	}
	return time.Duration(cfg.PaymentStatusReportTimeout) * time.Second
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, reportJob *batch.PaymentStatusReportJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.PaymentStatusReportSchedule
	if scheduleSpec == "" {
		scheduleSpec = defaultReportSchedule
		logger.Warn("Payment status report schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := reportJobTimeout(cfg.Batch)

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "PaymentStatusReport")
		jobLogger.Info("Cron triggered: Running payment status report job.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if _, runErr := reportJob.Run(ctx); runErr != nil {
			jobLogger.Error("Payment status report job finished with error", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule payment status report job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled payment status report job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}
