package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	CustomersCreatedTotal   prometheus.Counter
	CustomersUpdatedTotal   prometheus.Counter
	CustomersDeletedTotal   prometheus.Counter
	CustomersByPaymentState *prometheus.GaugeVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_manager_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		CustomersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "customer_manager_customers_created_total",
				Help: "Total number of customers successfully created.",
			},
		),
		CustomersUpdatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "customer_manager_customers_updated_total",
				Help: "Total number of customer update requests applied.",
			},
		),
		CustomersDeletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "customer_manager_customers_deleted_total",
				Help: "Total number of customer delete requests applied.",
			},
		),
		CustomersByPaymentState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "customer_manager_customers_by_payment_status",
				Help: "Number of stored customers per payment status, refreshed by the report job.",
			},
			[]string{"status"},
		),
	}
)

func RecordDBQuery(queryName string, err error, started time.Time) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(time.Since(started).Seconds())
}

func RecordCustomerCreated() {
	Business.CustomersCreatedTotal.Inc()
}

func RecordCustomerUpdated() {
	Business.CustomersUpdatedTotal.Inc()
}

func RecordCustomerDeleted() {
	Business.CustomersDeletedTotal.Inc()
}

func SetCustomersByPaymentStatus(counts map[string]int) {
	for status, n := range counts {
		Business.CustomersByPaymentState.WithLabelValues(status).Set(float64(n))
	}
}
