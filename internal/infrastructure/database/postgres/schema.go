package postgres

import (
	"context"
	"customer-manager/internal/pkg/apperrors"
	"log/slog"
)

const createCustomersTable = `
        CREATE TABLE IF NOT EXISTS customers (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            address TEXT NOT NULL,
            payment_status TEXT DEFAULT 'None' CHECK (payment_status IN ('None', 'Partial', 'Full')),
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`

// EnsureSchema creates the customers table when it does not exist yet.
func EnsureSchema(ctx context.Context, db DBPool, logger *slog.Logger) error {
	logger.InfoContext(ctx, "Ensuring database schema...")
	if _, err := db.Exec(ctx, createCustomersTable); err != nil {
		logger.ErrorContext(ctx, "Failed to initialize database schema", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to create customers table")
	}
	logger.InfoContext(ctx, "Database schema initialized successfully")
	return nil
}
