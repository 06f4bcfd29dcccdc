package customer

import (
	"fmt"
	"strings"
	"time"

	"customer-manager/internal/pkg/apperrors"
)

type PaymentStatus string

const (
	PaymentNone    PaymentStatus = "None"
	PaymentPartial PaymentStatus = "Partial"
	PaymentFull    PaymentStatus = "Full"
)

var PaymentStatuses = []PaymentStatus{PaymentNone, PaymentPartial, PaymentFull}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentNone, PaymentPartial, PaymentFull:
		return true
	}
	return false
}

// OrDefault maps the empty status to PaymentNone.
func (s PaymentStatus) OrDefault() PaymentStatus {
	if s == "" {
		return PaymentNone
	}
	return s
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(strings.TrimSpace(s)).OrDefault()
	if !status.Valid() {
		return "", apperrors.NewValidationError("payment_status", fmt.Sprintf("must be one of None, Partial, Full; got %q", s))
	}
	return status, nil
}

// Filter restricts List to one payment status. FilterAll means no restriction.
type Filter string

const FilterAll Filter = "All"

func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == string(FilterAll) {
		return FilterAll, nil
	}
	if !PaymentStatus(s).Valid() {
		return "", apperrors.NewValidationError("payment_status", fmt.Sprintf("unknown filter %q", s))
	}
	return Filter(s), nil
}

func (f Filter) IsAll() bool {
	return f == "" || f == FilterAll
}

func (f Filter) Matches(c *Customer) bool {
	return f.IsAll() || c.PaymentStatus == PaymentStatus(f)
}

type Customer struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Address       string        `json:"address"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

func NewCustomer(name, address string, status PaymentStatus) *Customer {
	return &Customer{
		Name:          name,
		Address:       address,
		PaymentStatus: status.OrDefault(),
		CreatedAt:     time.Now(),
	}
}

// Replace overwrites the mutable fields. ID and CreatedAt are left untouched.
func (c *Customer) Replace(name, address string, status PaymentStatus) {
	c.Name = name
	c.Address = address
	c.PaymentStatus = status.OrDefault()
}

// NewerFirst orders by CreatedAt descending, then ID descending.
func NewerFirst(a, b *Customer) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}
