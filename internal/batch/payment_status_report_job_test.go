package batch_test

import (
	"context"
	"customer-manager/internal/batch"
	"customer-manager/internal/domain/customer"
	"customer-manager/internal/infrastructure/monitoring"
	"customer-manager/internal/pkg/apperrors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) ListCustomers(ctx context.Context, filter customer.Filter) ([]*customer.Customer, error) {
	args := m.Called(ctx, filter)
	if customers, ok := args.Get(0).([]*customer.Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) CreateNewCustomer(ctx context.Context, name, address string, status customer.PaymentStatus) (*customer.Customer, error) {
	args := m.Called(ctx, name, address, status)
	if cust, ok := args.Get(0).(*customer.Customer); ok {
		return cust, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, customerID int64, name, address string, status customer.PaymentStatus) error {
	return m.Called(ctx, customerID, name, address, status).Error(0)
}

func (m *MockCustomerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	return m.Called(ctx, customerID).Error(0)
}

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestPaymentStatusReportJobRun(t *testing.T) {
	ctx := context.Background()

	t.Run("counts every status and publishes the gauge", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("ListCustomers", mock.Anything, customer.FilterAll).Return([]*customer.Customer{
			{ID: 1, PaymentStatus: customer.PaymentFull},
			{ID: 2, PaymentStatus: customer.PaymentFull},
			{ID: 3, PaymentStatus: customer.PaymentNone},
			{ID: 4, PaymentStatus: ""},
		}, nil)

		counts, err := batch.NewPaymentStatusReportJob(svc, logger).Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[customer.PaymentStatus]int{
			customer.PaymentNone:    2,
			customer.PaymentPartial: 0,
			customer.PaymentFull:    2,
		}, counts)

		gauge := monitoring.Business.CustomersByPaymentState
		assert.Equal(t, float64(2), testutil.ToFloat64(gauge.WithLabelValues("Full")))
		assert.Equal(t, float64(0), testutil.ToFloat64(gauge.WithLabelValues("Partial")))
		assert.Equal(t, float64(2), testutil.ToFloat64(gauge.WithLabelValues("None")))
		svc.AssertExpectations(t)
	})

	t.Run("empty store reports zeros", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("ListCustomers", mock.Anything, customer.FilterAll).Return([]*customer.Customer{}, nil)

		counts, err := batch.NewPaymentStatusReportJob(svc, logger).Run(ctx)
		require.NoError(t, err)
		assert.Len(t, counts, len(customer.PaymentStatuses))
		for _, n := range counts {
			assert.Zero(t, n)
		}
	})

	t.Run("list failure aborts", func(t *testing.T) {
		svc := new(MockCustomerService)
		svc.On("ListCustomers", mock.Anything, customer.FilterAll).
			Return(nil, fmt.Errorf("%w: connection refused", apperrors.ErrDatabase))

		counts, err := batch.NewPaymentStatusReportJob(svc, logger).Run(ctx)
		assert.Nil(t, counts)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestNewPaymentStatusReportJobPanicsOnNilDeps(t *testing.T) {
	assert.Panics(t, func() { batch.NewPaymentStatusReportJob(nil, logger) })
	assert.Panics(t, func() { batch.NewPaymentStatusReportJob(new(MockCustomerService), nil) })
}
