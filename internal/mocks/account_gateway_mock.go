package mocks

import (
	"context"

	"penora-write/internal/account"
	"penora-write/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockAccountGateway is a mock type for the account.Gateway type
type MockAccountGateway struct {
	mock.Mock
}

// Authenticate provides a mock function with given fields: ctx, username, password, mode
func (_m *MockAccountGateway) Authenticate(ctx context.Context, username string, password string, mode account.Mode) (account.AuthResult, error) {
	ret := _m.Called(ctx, username, password, mode)

	var r0 account.AuthResult
	if rf, ok := ret.Get(0).(func(context.Context, string, string, account.Mode) account.AuthResult); ok {
		r0 = rf(ctx, username, password, mode)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(account.AuthResult)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, account.Mode) error); ok {
		r1 = rf(ctx, username, password, mode)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// AuthenticateFederated provides a mock function with given fields: ctx, providerToken
func (_m *MockAccountGateway) AuthenticateFederated(ctx context.Context, providerToken string) (account.AuthResult, error) {
	ret := _m.Called(ctx, providerToken)

	var r0 account.AuthResult
	if rf, ok := ret.Get(0).(func(context.Context, string) account.AuthResult); ok {
		r0 = rf(ctx, providerToken)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(account.AuthResult)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, providerToken)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListMine provides a mock function with given fields: ctx, credential
func (_m *MockAccountGateway) ListMine(ctx context.Context, credential string) ([]domain.Story, error) {
	ret := _m.Called(ctx, credential)

	var r0 []domain.Story
	if rf, ok := ret.Get(0).(func(context.Context, string) []domain.Story); ok {
		r0 = rf(ctx, credential)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Story)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, credential)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Save provides a mock function with given fields: ctx, credential, input
func (_m *MockAccountGateway) Save(ctx context.Context, credential string, input account.SaveInput) error {
	ret := _m.Called(ctx, credential, input)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, account.SaveInput) error); ok {
		r0 = rf(ctx, credential, input)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockAccountGateway creates a new instance of MockAccountGateway. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockAccountGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAccountGateway {
	m := &MockAccountGateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ account.Gateway = (*MockAccountGateway)(nil)
