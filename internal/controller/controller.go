// Package controller drives an interactive customer session: it owns the
// current filter and selected record, calls the configured store and turns
// every outcome into a view update or a user notification.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"customer-manager/internal/domain/customer"
	"customer-manager/internal/pkg/apperrors"
)

const (
	msgLoadFailed     = "Failed to load customers."
	msgBackendHint    = " Check if backend is running."
	msgNotFound       = "Customer not found"
	msgDetailFailed   = "Failed to load customer details"
	msgEditFailed     = "Failed to load customer"
	msgRequiredFields = "Please fill in all required fields"
	msgInvalidStatus  = "Please choose a valid payment status"
	msgInvalidFilter  = "Unknown payment status filter"
	msgCreated        = "Customer created successfully!"
	msgUpdated        = "Customer updated successfully!"
	msgSaveFailed     = "Failed to save customer"
	msgDeleted        = "Customer deleted successfully!"
	msgDeleteFailed   = "Failed to delete customer"
	msgInProgress     = "Another operation is still in progress"
)

const DeleteConfirmPrompt = "Are you sure you want to delete this customer? This action cannot be undone."

var ErrOperationInProgress = errors.New("another customer operation is still in progress")

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

type State struct {
	CurrentFilter customer.Filter
	// SelectedID is the record open in a detail view, 0 when none is.
	SelectedID int64
}

// Form carries the values of the add/edit form. A zero ID means create.
type Form struct {
	ID            int64
	Name          string
	Address       string
	PaymentStatus customer.PaymentStatus
}

type View interface {
	RenderList(customers []*customer.Customer, filter customer.Filter)
	ShowDetail(c *customer.Customer)
	OpenForm(form Form)
}

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Confirmer interface {
	Confirm(prompt string) bool
}

type Controller struct {
	repo      customer.Repository
	mode      Mode
	view      View
	notifier  Notifier
	confirmer Confirmer
	logger    *slog.Logger

	busy atomic.Bool

	mu    sync.Mutex
	state State
}

func New(repo customer.Repository, mode Mode, view View, notifier Notifier, confirmer Confirmer, logger *slog.Logger) *Controller {
	if repo == nil || view == nil || notifier == nil || confirmer == nil {
		panic("controller dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		repo:      repo,
		mode:      mode,
		view:      view,
		notifier:  notifier,
		confirmer: confirmer,
		logger:    logger.With("component", "CustomerController", "mode", string(mode)),
		state:     State{CurrentFilter: customer.FilterAll},
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// acquire marks an operation as in flight. The returned func releases it.
func (c *Controller) acquire() (func(), error) {
	if !c.busy.CompareAndSwap(false, true) {
		c.notifier.Error(msgInProgress)
		return nil, ErrOperationInProgress
	}
	return func() { c.busy.Store(false) }, nil
}

func (c *Controller) LoadList(ctx context.Context) error {
	release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()
	return c.loadList(ctx)
}

func (c *Controller) loadList(ctx context.Context) error {
	filter := c.State().CurrentFilter
	customers, err := c.repo.List(ctx, filter)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to load customer list", slog.String("filter", string(filter)), slog.Any("error", err))
		msg := msgLoadFailed
		if c.mode == ModeRemote {
			msg += msgBackendHint
		}
		c.notifier.Error(msg)
		return err
	}
	c.view.RenderList(customers, filter)
	return nil
}

func (c *Controller) ViewDetail(ctx context.Context, id int64) error {
	release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()

	cust, err := c.fetch(ctx, id, msgDetailFailed)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state.SelectedID = cust.ID
	c.mu.Unlock()
	c.view.ShowDetail(cust)
	return nil
}

// Edit loads a record and opens the form pre-filled with its values.
func (c *Controller) Edit(ctx context.Context, id int64) (Form, error) {
	release, err := c.acquire()
	if err != nil {
		return Form{}, err
	}
	defer release()

	cust, err := c.fetch(ctx, id, msgEditFailed)
	if err != nil {
		return Form{}, err
	}
	form := Form{
		ID:            cust.ID,
		Name:          cust.Name,
		Address:       cust.Address,
		PaymentStatus: cust.PaymentStatus.OrDefault(),
	}
	c.view.OpenForm(form)
	return form, nil
}

func (c *Controller) fetch(ctx context.Context, id int64, failureMsg string) (*customer.Customer, error) {
	cust, err := c.repo.Get(ctx, id)
	switch {
	case errors.Is(err, customer.ErrNotFound):
		c.logger.InfoContext(ctx, "Customer not found", slog.Int64("customer_id", id))
		c.notifier.Error(msgNotFound)
		return nil, err
	case err != nil:
		c.logger.ErrorContext(ctx, "Failed to load customer", slog.Int64("customer_id", id), slog.Any("error", err))
		c.notifier.Error(failureMsg)
		return nil, err
	}
	return cust, nil
}

// Submit creates the record when form.ID is zero and replaces it otherwise,
// then reloads the list.
func (c *Controller) Submit(ctx context.Context, form Form) error {
	release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()

	name := strings.TrimSpace(form.Name)
	address := strings.TrimSpace(form.Address)
	if name == "" || address == "" {
		c.notifier.Error(msgRequiredFields)
		field := "name"
		if name != "" {
			field = "address"
		}
		return apperrors.NewValidationError(field, msgRequiredFields)
	}
	status := form.PaymentStatus.OrDefault()
	if !status.Valid() {
		c.notifier.Error(msgInvalidStatus)
		return apperrors.NewValidationError("payment_status", msgInvalidStatus)
	}

	var successMsg string
	if form.ID == 0 {
		var created *customer.Customer
		created, err = c.repo.Create(ctx, name, address, status)
		if err == nil {
			c.logger.InfoContext(ctx, "Customer created", slog.Int64("customer_id", created.ID))
		}
		successMsg = msgCreated
	} else {
		err = c.repo.Update(ctx, form.ID, name, address, status)
		successMsg = msgUpdated
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to save customer", slog.Int64("customer_id", form.ID), slog.Any("error", err))
		c.notifier.Error(msgSaveFailed)
		return err
	}

	c.notifier.Success(successMsg)
	_ = c.loadList(ctx)
	return nil
}

// Delete asks for confirmation first. A declined confirmation is not an
// error and touches nothing.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()

	if !c.confirmer.Confirm(DeleteConfirmPrompt) {
		c.logger.DebugContext(ctx, "Delete cancelled by user", slog.Int64("customer_id", id))
		return nil
	}

	if err := c.repo.Delete(ctx, id); err != nil {
		c.logger.ErrorContext(ctx, "Failed to delete customer", slog.Int64("customer_id", id), slog.Any("error", err))
		c.notifier.Error(msgDeleteFailed)
		return err
	}

	c.mu.Lock()
	if c.state.SelectedID == id {
		c.state.SelectedID = 0
	}
	c.mu.Unlock()

	_ = c.loadList(ctx)
	c.notifier.Success(msgDeleted)
	return nil
}

func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SelectedID = 0
}

func (c *Controller) SetFilter(ctx context.Context, filter customer.Filter) error {
	release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()

	parsed, err := customer.ParseFilter(string(filter))
	if err != nil {
		c.logger.WarnContext(ctx, "Rejected customer filter", slog.String("filter", string(filter)), slog.Any("error", err))
		c.notifier.Error(msgInvalidFilter)
		return err
	}
	filter = parsed
	c.mu.Lock()
	c.state.CurrentFilter = filter
	c.mu.Unlock()
	return c.loadList(ctx)
}
