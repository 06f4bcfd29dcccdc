package handler

import (
	"customer-manager/internal/api/handler/dto"
	"customer-manager/internal/api/middleware"
	"customer-manager/internal/domain/customer"
	"customer-manager/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

func getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: customerID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid customerID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

// actor names the authenticated caller in audit logs, "anonymous" when auth
// is disabled.
func actor(r *http.Request) slog.Attr {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok || username == "" {
		username = "anonymous"
	}
	return slog.String("actor", username)
}

// logLevelFor keeps expected client mistakes out of the error log.
func logLevelFor(err error) slog.Level {
	if errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrInvalidArgument) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// ListCustomers handles GET /customers
// @Summary List customers
// @Description Lists customers newest first, optionally restricted to one payment status.
// @Tags Customers
// @Produce json
// @Param payment_status query string false "Payment status filter" Enums(All, None, Partial, Full)
// @Success 200 {array} dto.CustomerResponse "List of customers"
// @Failure 400 {object} dto.ErrorResponse "Unknown payment status filter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
// @Security BearerAuth
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	filter, err := customer.ParseFilter(r.URL.Query().Get("payment_status"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid payment_status filter", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Calling customer service ListCustomers", slog.String("filter", string(filter)))
	customers, err := h.service.ListCustomers(r.Context(), filter)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list customers", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCustomerListResponse(customers)
	h.logger.InfoContext(r.Context(), "Customers listed successfully", slog.Int("count", len(resp)))
	respondJSON(w, http.StatusOK, resp)
}

// GetCustomer handles GET /customers/{customerID}
// @Summary Retrieve customer details
// @Description Retrieves a single customer by id.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	domainCustomer, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(domainCustomer))
}

// CreateCustomer handles POST /customers
// @Summary Create a new customer
// @Description Creates a customer. Payment status defaults to None.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerRequest true "Customer creation request"
// @Success 201 {object} dto.CreateCustomerResponse "Customer successfully created"
// @Failure 400 {object} dto.ErrorResponse "Missing name/address or invalid payment status"
// @Failure 500 {object} dto.ErrorResponse "Internal server error during creation"
// @Router /customers [post]
// @Security BearerAuth
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed: Name or Address is empty")
		respondError(w, err)
		return
	}
	status, err := customer.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed: invalid payment status", slog.String("payment_status", req.PaymentStatus))
		respondError(w, err)
		return
	}

	createdCustomer, err := h.service.CreateNewCustomer(r.Context(), req.Name, req.Address, status)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to create customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.Int64("customerID", createdCustomer.ID), actor(r))
	respondJSON(w, http.StatusCreated, dto.CreateCustomerResponse{
		Message:    "Customer created successfully",
		CustomerID: createdCustomer.ID,
	})
}

// UpdateCustomer handles PUT /customers/{customerID}
// @Summary Replace a customer
// @Description Replaces name, address and payment status. An unknown id is not an error.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param request body dto.UpdateCustomerRequest true "Replacement values"
// @Success 200 {object} dto.MessageResponse "Customer updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID or request payload"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [put]
// @Security BearerAuth
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	var req dto.UpdateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed: Name or Address is empty")
		respondError(w, err)
		return
	}
	status, err := customer.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed: invalid payment status", slog.String("payment_status", req.PaymentStatus))
		respondError(w, err)
		return
	}

	if err := h.service.UpdateCustomer(r.Context(), customerID, req.Name, req.Address, status); err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to update customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer updated successfully", slog.Int64("customerID", customerID), actor(r))
	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: "Customer updated successfully"})
}

// DeleteCustomer handles DELETE /customers/{customerID}
// @Summary Delete a customer
// @Description Permanently deletes a customer. Deleting an unknown id succeeds.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.MessageResponse "Customer deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [delete]
// @Security BearerAuth
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	if err := h.service.DeleteCustomer(r.Context(), customerID); err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to delete customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer deleted successfully", slog.Int64("customerID", customerID), actor(r))
	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: "Customer deleted successfully"})
}

// Health handles GET /health
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok", Message: "Customer Manager API is running"})
}
