package customer

import (
	"context"
	"customer-manager/internal/event"
	"customer-manager/internal/infrastructure/monitoring"
	"customer-manager/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	inputValidationPassed = "Input validation passed"
	customerNotFound      = "Customer not found by repository"
)

type CustomerService interface {
	ListCustomers(ctx context.Context, filter Filter) ([]*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	CreateNewCustomer(ctx context.Context, name, address string, status PaymentStatus) (*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, name, address string, status PaymentStatus) error
	DeleteCustomer(ctx context.Context, customerID int64) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   Repository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo Repository, eventPublisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events will be discarded")
		eventPublisher = event.NoopPublisher{}
	}

	return &customerService{
		repo:   repo,
		pub:    eventPublisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	payload := event.CustomerEventPayload{
		CustomerID:    cust.ID,
		Name:          cust.Name,
		Address:       cust.Address,
		PaymentStatus: string(cust.PaymentStatus),
	}
	if !cust.CreatedAt.IsZero() {
		createdAt := cust.CreatedAt
		payload.CreatedAt = &createdAt
	}
	return payload
}

// ValidateFields trims name and address and checks all three mutable fields.
func ValidateFields(name, address string, status PaymentStatus) (string, string, PaymentStatus, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	if name == "" {
		return "", "", "", apperrors.NewValidationError("name", "customer name cannot be empty")
	}
	if address == "" {
		return "", "", "", apperrors.NewValidationError("address", "customer address cannot be empty")
	}
	status, err := ParsePaymentStatus(string(status))
	if err != nil {
		return "", "", "", err
	}
	return name, address, status, nil
}

func (s *customerService) ListCustomers(ctx context.Context, filter Filter) ([]*Customer, error) {
	logCtx := s.logger.With(slog.String("filter", string(filter)))
	logCtx.InfoContext(ctx, "Attempting to list customers")

	if !filter.IsAll() && !PaymentStatus(filter).Valid() {
		logCtx.WarnContext(ctx, "Validation failed: unknown payment status filter")
		return nil, apperrors.NewValidationError("payment_status", fmt.Sprintf("unknown filter %q", filter))
	}

	customers, err := s.repo.List(ctx, filter)
	if err != nil {
		logCtx.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to get customer by ID")

	customer, err := s.repo.Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	logCtx.InfoContext(ctx, "Successfully retrieved customer")
	return customer, nil
}

func (s *customerService) CreateNewCustomer(ctx context.Context, name, address string, status PaymentStatus) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	name, address, status, err := ValidateFields(name, address, status)
	if err != nil {
		s.logger.WarnContext(ctx, "Validation failed for new customer", slog.Any("error", err))
		return nil, err
	}
	s.logger.DebugContext(ctx, inputValidationPassed, slog.String("name", name))

	customer, err := s.repo.Create(ctx, name, address, status)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}
	monitoring.RecordCustomerCreated()

	logCtx := s.logger.With(slog.Int64("customerID", customer.ID))
	createdEvent := event.CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(customer),
	}
	if pubErr := s.pub.PublishCustomerCreated(ctx, createdEvent); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	logCtx.InfoContext(ctx, "Successfully created new customer")
	return customer, nil
}

// UpdateCustomer and DeleteCustomer count and publish every request the store
// accepted. A missing id is a successful no-op in every store, so it is
// counted and published too.
func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, name, address string, status PaymentStatus) error {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to update customer")

	name, address, status, err := ValidateFields(name, address, status)
	if err != nil {
		logCtx.WarnContext(ctx, "Validation failed for customer update", slog.Any("error", err))
		return err
	}
	logCtx.DebugContext(ctx, inputValidationPassed)

	if err := s.repo.Update(ctx, customerID, name, address, status); err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to update customer", slog.Any("error", err))
		return fmt.Errorf("failed to update customer %d: %w", customerID, err)
	}
	monitoring.RecordCustomerUpdated()

	updatedEvent := event.CustomerUpdatedEvent{
		Timestamp: time.Now(),
		Payload: event.CustomerEventPayload{
			CustomerID:    customerID,
			Name:          name,
			Address:       address,
			PaymentStatus: string(status),
		},
	}
	if pubErr := s.pub.PublishCustomerUpdated(ctx, updatedEvent); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer updated, but FAILED to publish update event", slog.Any("error", pubErr))
	}

	logCtx.InfoContext(ctx, "Successfully updated customer")
	return nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to delete customer")

	if err := s.repo.Delete(ctx, customerID); err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to delete customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}
	monitoring.RecordCustomerDeleted()

	deletedEvent := event.CustomerDeletedEvent{
		Timestamp: time.Now(),
		Payload:   event.CustomerEventPayload{CustomerID: customerID},
	}
	if pubErr := s.pub.PublishCustomerDeleted(ctx, deletedEvent); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer deleted, but FAILED to publish delete event", slog.Any("error", pubErr))
	}

	logCtx.InfoContext(ctx, "Successfully deleted customer")
	return nil
}
