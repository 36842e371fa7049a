package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// PublisherMock stands in for the broker-backed event publishers. It
// satisfies both the telemetry and rabbitmq Publisher interfaces; a
// compile-time assertion here would cycle with the telemetry tests, so the
// contract is pinned by usage instead.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
