package dto

import (
	"customer-manager/internal/domain/customer"
	"customer-manager/internal/pkg/apperrors"
	"strings"
	"time"

	"github.com/samber/lo"
)

type CreateCustomerRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

func (r *CreateCustomerRequest) Validate() error {
	return validateNameAndAddress(r.Name, r.Address)
}

type UpdateCustomerRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	PaymentStatus string `json:"payment_status"`
}

func (r *UpdateCustomerRequest) Validate() error {
	return validateNameAndAddress(r.Name, r.Address)
}

const nameAndAddressRequired = "Name and address are required"

func validateNameAndAddress(name, address string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("name", nameAndAddressRequired)
	}
	if strings.TrimSpace(address) == "" {
		return apperrors.NewValidationError("address", nameAndAddressRequired)
	}
	return nil
}

type CustomerResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		ID:            cust.ID,
		Name:          cust.Name,
		Address:       cust.Address,
		PaymentStatus: string(cust.PaymentStatus.OrDefault()),
		CreatedAt:     cust.CreatedAt,
	}
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	return lo.Map(customers, func(c *customer.Customer, _ int) CustomerResponse {
		return NewCustomerResponse(c)
	})
}

type CreateCustomerResponse struct {
	Message    string `json:"message"`
	CustomerID int64  `json:"customerId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}
