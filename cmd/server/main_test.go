package main

import (
	"customer-manager/internal/batch"
	"customer-manager/internal/config"
	"customer-manager/internal/domain/customer"
	"customer-manager/internal/event"
	"customer-manager/internal/infrastructure/storage/local"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestStartServer(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:         0,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
	}

	srv, serverErrors, shutdownChan := startServer(cfg, http.NewServeMux(), logger)
	t.Cleanup(func() { _ = srv.Close() })

	assert.NotNil(t, srv, "Server should not be nil")
	assert.NotNil(t, serverErrors, "Server errors channel should not be nil")
	assert.NotNil(t, shutdownChan, "Shutdown channel should not be nil")
	assert.Equal(t, ":0", srv.Addr)
}

func TestHandleShutdown(t *testing.T) {
	cronScheduler := cron.New()
	cronScheduler.Start()
	srv := &http.Server{}
	shutdownChan := make(chan os.Signal, 1)
	serverErrors := make(chan error, 1)

	shutdownChan <- syscall.SIGTERM

	done := make(chan struct{})
	go func() {
		handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("graceful shutdown did not complete")
	}
}

func TestReportJobTimeout(t *testing.T) {
	assert.Equal(t, defaultReportTimeout, reportJobTimeout(config.BatchConfig{}))
	assert.Equal(t, 90*time.Second, reportJobTimeout(config.BatchConfig{PaymentStatusReportTimeout: 90}))
	assert.Equal(t, defaultReportTimeout, reportJobTimeout(config.BatchConfig{PaymentStatusReportTimeout: -5}))
	assert.Equal(t, 24*time.Hour, reportJobTimeout(config.BatchConfig{PaymentStatusReportTimeout: 86400}))
}

func TestStartBatchJobs(t *testing.T) {
	store, err := local.Open(filepath.Join(t.TempDir(), "cron.db"), time.Second, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	job := batch.NewPaymentStatusReportJob(customer.NewCustomerService(store, event.NoopPublisher{}, logger), logger)

	t.Run("uses the default schedule when none is configured", func(t *testing.T) {
		c := startBatchJobs(&config.Config{}, logger, job)
		defer c.Stop()

		require.Len(t, c.Entries(), 1)
	})

	t.Run("invalid schedule leaves the scheduler empty", func(t *testing.T) {
		cfg := &config.Config{Batch: config.BatchConfig{PaymentStatusReportSchedule: "not a schedule"}}
		c := startBatchJobs(cfg, logger, job)
		defer c.Stop()

		assert.Empty(t, c.Entries())
	})
}

func TestInitializeEventPublisherDisabled(t *testing.T) {
	publisher, conn := initializeEventPublisher(config.RabbitMQConfig{Enabled: false}, logger)

	assert.IsType(t, event.NoopPublisher{}, publisher)
	assert.Nil(t, conn)
	closeEventConnection(conn, logger)
}
