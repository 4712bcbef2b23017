package mocks

import (
	"context"

	"sensor-collector/core/sensor"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of storage.Client
type Client struct {
	mock.Mock
}

func (m *Client) SaveNode(ctx context.Context, bucket string, node *sensor.Node) error {
	args := m.Called(ctx, bucket, node)
	return args.Error(0)
}

func (m *Client) UploadImage(ctx context.Context, bucket string, node *sensor.Node, imageType string, data []byte) error {
	args := m.Called(ctx, bucket, node, imageType, data)
	return args.Error(0)
}
