package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"customer-manager/internal/domain/customer"
	"customer-manager/internal/infrastructure/monitoring"
	"customer-manager/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	selectCustomerColumns = `
        SELECT id, name, address, COALESCE(payment_status, 'None'), created_at
        FROM customers`

	orderNewestFirst = " ORDER BY created_at DESC, id DESC"
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) List(ctx context.Context, filter customer.Filter) (customers []*customer.Customer, err error) {
	defer func(started time.Time) { monitoring.RecordDBQuery("list_customers", err, started) }(time.Now())

	r.logger.InfoContext(ctx, "Attempting to list customers", slog.String("filter", string(filter)))

	query := selectCustomerColumns
	args := []any{}
	if !filter.IsAll() {
		query += " WHERE payment_status = $1"
		args = append(args, string(filter))
	}
	query += orderNewestFirst

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to query customers")
	}
	defer rows.Close()

	customers = make([]*customer.Customer, 0)
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, apperrors.WrapDatabaseError(err, "failed to scan customer row")
		}
		customers = append(customers, cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "error iterating customer rows")
	}

	r.logger.InfoContext(ctx, "Finished listing customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) Get(ctx context.Context, customerID int64) (cust *customer.Customer, err error) {
	defer func(started time.Time) { monitoring.RecordDBQuery("get_customer", err, started) }(time.Now())

	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to find customer by ID")

	cust, err = scanCustomer(r.db.QueryRow(ctx, selectCustomerColumns+" WHERE id = $1", customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Customer not found")
			return nil, customer.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to get customer by ID")
	}

	logCtx.InfoContext(ctx, "Customer found successfully")
	return cust, nil
}

func (r *CustomerRepository) Create(ctx context.Context, name, address string, status customer.PaymentStatus) (cust *customer.Customer, err error) {
	defer func(started time.Time) { monitoring.RecordDBQuery("create_customer", err, started) }(time.Now())

	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("name", name))

	query := `
        INSERT INTO customers (name, address, payment_status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	cust = customer.NewCustomer(name, address, status)
	err = r.db.QueryRow(ctx, query,
		cust.Name,
		cust.Address,
		string(cust.PaymentStatus),
	).Scan(
		&cust.ID,
		&cust.CreatedAt,
	)
	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrValidation) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to check constraint violation", slog.Any("error", err))
			return nil, translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to insert customer")
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.ID))
	return cust, nil
}

func (r *CustomerRepository) Update(ctx context.Context, customerID int64, name, address string, status customer.PaymentStatus) (err error) {
	defer func(started time.Time) { monitoring.RecordDBQuery("update_customer", err, started) }(time.Now())

	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to update customer")

	query := `
        UPDATE customers
        SET name = $1,
            address = $2,
            payment_status = $3
        WHERE id = $4`

	cmdTag, err := r.db.Exec(ctx, query,
		name,
		address,
		string(status.OrDefault()),
		customerID,
	)
	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrValidation) {
			logCtx.WarnContext(ctx, "Failed to update customer due to check constraint violation", slog.Any("error", err))
			return translatedErr
		}
		logCtx.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to update customer")
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Update affected zero rows, customer likely not found")
		return nil
	}

	logCtx.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) (err error) {
	defer func(started time.Time) { monitoring.RecordDBQuery("delete_customer", err, started) }(time.Now())

	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to delete customer")

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to delete customer")
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Delete affected zero rows, customer likely not found")
		return nil
	}

	logCtx.InfoContext(ctx, "Customer deleted successfully")
	return nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var (
		cust   customer.Customer
		status string
	)
	if err := row.Scan(&cust.ID, &cust.Name, &cust.Address, &status, &cust.CreatedAt); err != nil {
		return nil, err
	}
	cust.PaymentStatus = customer.PaymentStatus(status)
	return &cust, nil
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return customer.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23514" {
			contextLogger.Warn("Database check constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return apperrors.NewValidationError("payment_status", "must be one of None, Partial, Full")
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return apperrors.WrapDatabaseError(err, "db error code "+pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return apperrors.WrapDatabaseError(err, "database operation failed")
}
