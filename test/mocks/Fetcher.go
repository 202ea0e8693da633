package mocks

import (
	context "context"

	models "github.com/UnknownOlympus/helios/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// Fetcher is an autogenerated mock type for the Fetcher type
type Fetcher struct {
	mock.Mock
}

// FindClosest provides a mock function with given fields: ctx, coord
func (_m *Fetcher) FindClosest(ctx context.Context, coord models.Coordinate) ([]byte, error) {
	ret := _m.Called(ctx, coord)

	if len(ret) == 0 {
		panic("no return value specified for FindClosest")
	}

	var r0 []byte
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, models.Coordinate) ([]byte, error)); ok {
		return rf(ctx, coord)
	}
	if rf, ok := ret.Get(0).(func(context.Context, models.Coordinate) []byte); ok {
		r0 = rf(ctx, coord)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]byte)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, models.Coordinate) error); ok {
		r1 = rf(ctx, coord)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewFetcher creates a new instance of Fetcher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *Fetcher {
	mock := &Fetcher{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
