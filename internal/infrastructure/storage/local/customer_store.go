package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"customer-manager/internal/domain/customer"
	"customer-manager/internal/pkg/apperrors"

	"github.com/samber/lo"
	"go.etcd.io/bbolt"
)

const (
	storeBucket  = "store"
	customersKey = "excellence_graphics_customers"

	defaultOpenTimeout = time.Second
)

// CustomerStore keeps every customer as one JSON array under a single key of a
// bbolt file. Each operation is a single read-modify-write transaction.
type CustomerStore struct {
	db     *bbolt.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ customer.Repository = (*CustomerStore)(nil)

// Open opens (creating if needed) the store file at path. A second process
// holding the file makes Open fail after openTimeout.
func Open(path string, openTimeout time.Duration, logger *slog.Logger) (*CustomerStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: data file path is empty", apperrors.ErrStorage)
	}
	if openTimeout <= 0 {
		openTimeout = defaultOpenTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, apperrors.WrapStorageError(err, "could not open data file "+path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(storeBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, apperrors.WrapStorageError(err, "create store bucket failed")
	}

	logger.Info("Local customer store opened", slog.String("path", path))
	return &CustomerStore{
		db:     db,
		logger: logger.With("component", "LocalCustomerStore"),
		now:    time.Now,
	}, nil
}

func (s *CustomerStore) Close() error {
	return s.db.Close()
}

func (s *CustomerStore) List(ctx context.Context, filter customer.Filter) ([]*customer.Customer, error) {
	var customers []*customer.Customer
	err := s.db.View(func(tx *bbolt.Tx) error {
		all, err := readAll(tx)
		if err != nil {
			return err
		}
		customers = lo.Filter(all, func(c *customer.Customer, _ int) bool {
			return filter.Matches(c)
		})
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list customers", slog.Any("error", err))
		return nil, storageError("list customers", err)
	}

	slices.SortStableFunc(customers, customer.NewerFirst)
	return customers, nil
}

func (s *CustomerStore) Get(ctx context.Context, id int64) (*customer.Customer, error) {
	var found *customer.Customer
	err := s.db.View(func(tx *bbolt.Tx) error {
		all, err := readAll(tx)
		if err != nil {
			return err
		}
		c, ok := lo.Find(all, byID(id))
		if !ok {
			return customer.ErrNotFound
		}
		found = c
		return nil
	})
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to get customer", slog.Int64("customerID", id), slog.Any("error", err))
		return nil, storageError("get customer", err)
	}
	return found, nil
}

func (s *CustomerStore) Create(ctx context.Context, name, address string, status customer.PaymentStatus) (*customer.Customer, error) {
	created := customer.NewCustomer(name, address, status)
	created.CreatedAt = s.now().UTC()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		all, err := readAll(tx)
		if err != nil {
			return err
		}
		created.ID = nextID(all)
		return writeAll(tx, append(all, created))
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create customer", slog.Any("error", err))
		return nil, storageError("create customer", err)
	}

	s.logger.InfoContext(ctx, "Customer stored", slog.Int64("customerID", created.ID))
	return created, nil
}

func (s *CustomerStore) Update(ctx context.Context, id int64, name, address string, status customer.PaymentStatus) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		all, err := readAll(tx)
		if err != nil {
			return err
		}
		c, ok := lo.Find(all, byID(id))
		if !ok {
			s.logger.WarnContext(ctx, "Update skipped, customer not found", slog.Int64("customerID", id))
			return nil
		}
		c.Replace(name, address, status)
		return writeAll(tx, all)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update customer", slog.Int64("customerID", id), slog.Any("error", err))
		return storageError("update customer", err)
	}
	return nil
}

func (s *CustomerStore) Delete(ctx context.Context, id int64) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		all, err := readAll(tx)
		if err != nil {
			return err
		}
		remaining := lo.Reject(all, func(c *customer.Customer, _ int) bool {
			return c.ID == id
		})
		if len(remaining) == len(all) {
			return nil
		}
		return writeAll(tx, remaining)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete customer", slog.Int64("customerID", id), slog.Any("error", err))
		return storageError("delete customer", err)
	}
	return nil
}

func readAll(tx *bbolt.Tx) ([]*customer.Customer, error) {
	b := tx.Bucket([]byte(storeBucket))
	if b == nil {
		return nil, errors.New("store bucket is nil")
	}
	raw := b.Get([]byte(customersKey))
	if raw == nil {
		return []*customer.Customer{}, nil
	}

	var customers []*customer.Customer
	if err := json.Unmarshal(raw, &customers); err != nil {
		return nil, fmt.Errorf("%w: %w", customer.ErrCorruptData, err)
	}
	if customers == nil {
		customers = []*customer.Customer{}
	}
	return customers, nil
}

func writeAll(tx *bbolt.Tx, customers []*customer.Customer) error {
	raw, err := json.Marshal(customers)
	if err != nil {
		return fmt.Errorf("could not encode customers: %w", err)
	}
	return tx.Bucket([]byte(storeBucket)).Put([]byte(customersKey), raw)
}

func nextID(customers []*customer.Customer) int64 {
	ids := lo.Map(customers, func(c *customer.Customer, _ int) int64 { return c.ID })
	return lo.Max(ids) + 1
}

func byID(id int64) func(*customer.Customer) bool {
	return func(c *customer.Customer) bool { return c.ID == id }
}

// storageError leaves corrupt-data errors recognisable and files everything
// else under ErrStorage.
func storageError(op string, err error) error {
	if errors.Is(err, customer.ErrCorruptData) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return apperrors.WrapStorageError(err, "failed to "+op)
}
