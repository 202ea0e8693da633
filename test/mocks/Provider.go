package mocks

import (
	context "context"

	models "github.com/UnknownOlympus/helios/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// Provider is an autogenerated mock type for the Provider type
type Provider struct {
	mock.Mock
}

// ReverseGeocode provides a mock function with given fields: ctx, coord
func (_m *Provider) ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error) {
	ret := _m.Called(ctx, coord)

	if len(ret) == 0 {
		panic("no return value specified for ReverseGeocode")
	}

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, models.Coordinate) (string, error)); ok {
		return rf(ctx, coord)
	}
	if rf, ok := ret.Get(0).(func(context.Context, models.Coordinate) string); ok {
		r0 = rf(ctx, coord)
	} else {
		r0 = ret.Get(0).(string)
	}

	if rf, ok := ret.Get(1).(func(context.Context, models.Coordinate) error); ok {
		r1 = rf(ctx, coord)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewProvider creates a new instance of Provider. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *Provider {
	mock := &Provider{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
