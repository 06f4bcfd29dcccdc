package customer

import (
	"context"
	"errors"
	"fmt"

	"customer-manager/internal/pkg/apperrors"
)

var (
	ErrNotFound = fmt.Errorf("customer %w", apperrors.ErrNotFound)

	ErrCorruptData = errors.New("stored customer data is corrupt")

	ErrRemoteFailure = errors.New("remote customer API request failed")
)

// Repository is the record store contract shared by every backend.
//
// Get returns ErrNotFound when no record matches. Update and Delete of a
// missing id succeed without effect.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]*Customer, error)

	Get(ctx context.Context, id int64) (*Customer, error)

	Create(ctx context.Context, name, address string, status PaymentStatus) (*Customer, error)

	Update(ctx context.Context, id int64, name, address string, status PaymentStatus) error

	Delete(ctx context.Context, id int64) error
}
