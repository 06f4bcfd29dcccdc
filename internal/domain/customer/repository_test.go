package customer

import (
	"context"
	"customer-manager/internal/event"

	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

var _ Repository = (*MockCustomerRepository)(nil)

func (_m *MockCustomerRepository) List(ctx context.Context, filter Filter) ([]*Customer, error) {
	ret := _m.Called(ctx, filter)

	var r0 []*Customer
	if rf, ok := ret.Get(0).(func(context.Context, Filter) []*Customer); ok {
		r0 = rf(ctx, filter)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, Filter) error); ok {
		r1 = rf(ctx, filter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockCustomerRepository) Get(ctx context.Context, id int64) (*Customer, error) {
	ret := _m.Called(ctx, id)

	var r0 *Customer
	if rf, ok := ret.Get(0).(func(context.Context, int64) *Customer); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockCustomerRepository) Create(ctx context.Context, name, address string, status PaymentStatus) (*Customer, error) {
	ret := _m.Called(ctx, name, address, status)

	var r0 *Customer
	if rf, ok := ret.Get(0).(func(context.Context, string, string, PaymentStatus) *Customer); ok {
		r0 = rf(ctx, name, address, status)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, PaymentStatus) error); ok {
		r1 = rf(ctx, name, address, status)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockCustomerRepository) Update(ctx context.Context, id int64, name, address string, status PaymentStatus) error {
	ret := _m.Called(ctx, id, name, address, status)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int64, string, string, PaymentStatus) error); ok {
		r0 = rf(ctx, id, name, address, status)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockCustomerRepository) Delete(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, int64) error); ok {
		r0 = rf(ctx, id)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

type MockEventPublisher struct {
	mock.Mock
}

var _ event.EventPublisher = (*MockEventPublisher)(nil)

func (_m *MockEventPublisher) PublishCustomerCreated(ctx context.Context, e event.CustomerCreatedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

func (_m *MockEventPublisher) PublishCustomerUpdated(ctx context.Context, e event.CustomerUpdatedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

func (_m *MockEventPublisher) PublishCustomerDeleted(ctx context.Context, e event.CustomerDeletedEvent) error {
	return _m.Called(ctx, e).Error(0)
}
