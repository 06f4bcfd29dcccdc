package batch

import (
	"context"
	"customer-manager/internal/domain/customer"
	"customer-manager/internal/infrastructure/monitoring"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

// PaymentStatusReportJob counts customers per payment status, publishes the
// counts as a gauge and logs a summary line.
type PaymentStatusReportJob struct {
	customerService customer.CustomerService
	logger          *slog.Logger
}

func NewPaymentStatusReportJob(customerSvc customer.CustomerService, logger *slog.Logger) *PaymentStatusReportJob {
	if customerSvc == nil || logger == nil {
		panic("PaymentStatusReportJob dependencies cannot be nil")
	}
	return &PaymentStatusReportJob{
		customerService: customerSvc,
		logger:          logger.With("job", "PaymentStatusReport"),
	}
}

// Run returns the per-status counts it published. Every known status is
// present in the result, zero when no customer has it.
func (j *PaymentStatusReportJob) Run(ctx context.Context) (map[customer.PaymentStatus]int, error) {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting payment status report job.")

	customers, err := j.customerService.ListCustomers(ctx, customer.FilterAll)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list customers, aborting job.", slog.Any("error", err))
		return nil, fmt.Errorf("cannot run job, failed to list customers: %w", err)
	}

	counts := lo.CountValuesBy(customers, func(c *customer.Customer) customer.PaymentStatus {
		return c.PaymentStatus.OrDefault()
	})
	for _, status := range customer.PaymentStatuses {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}

	monitoring.SetCustomersByPaymentStatus(lo.MapKeys(counts, func(_ int, status customer.PaymentStatus) string {
		return string(status)
	}))

	j.logger.InfoContext(ctx, "Payment status report job finished.",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("total_customers", len(customers)),
		slog.Int("status_none", counts[customer.PaymentNone]),
		slog.Int("status_partial", counts[customer.PaymentPartial]),
		slog.Int("status_full", counts[customer.PaymentFull]),
	)
	return counts, nil
}
