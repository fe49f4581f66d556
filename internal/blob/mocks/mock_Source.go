// Package mocks provides test doubles for the blob source.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
)

// MockSource is a mock type for the Source interface.
type MockSource struct {
	mock.Mock
}

// Fetch provides a mock function with given fields: ctx, name
func (_m *MockSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	ret := _m.Called(ctx, name)

	if len(ret) == 0 {
		panic("no return value specified for Fetch")
	}

	var r0 []byte
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]byte, error)); ok {
		return rf(ctx, name)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) []byte); ok {
		r0 = rf(ctx, name)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]byte)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, name)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockSource creates a new instance of MockSource. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockSource(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSource {
	m := &MockSource{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
