package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docuchat-service/internal/rabbitmq"
)

// PublisherMock stands in for the AMQP publisher so audit emission can be
// asserted without a broker.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	return m.Called(ctx, routingKey, event).Error(0)
}

func (m *PublisherMock) Close() error {
	return m.Called().Error(0)
}

var _ rabbitmq.Publisher = (*PublisherMock)(nil)
