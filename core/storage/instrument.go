package storage

import (
	"context"
	"time"

	"sensor-collector/core/metrics"
	"sensor-collector/core/sensor"
)

type instrumented struct {
	next     Client
	provider string
	metrics  *metrics.Metrics
}

// Instrument wraps c so that every operation is counted and timed.
func Instrument(c Client, provider Provider, m *metrics.Metrics) Client {
	if m == nil {
		return c
	}
	return &instrumented{next: c, provider: string(provider), metrics: m}
}

func (i *instrumented) SaveNode(ctx context.Context, bucket string, node *sensor.Node) error {
	start := time.Now()
	err := i.next.SaveNode(ctx, bucket, node)
	i.metrics.ObserveStorage(i.provider, OpSaveNode, err, time.Since(start))
	return err
}

func (i *instrumented) UploadImage(ctx context.Context, bucket string, node *sensor.Node, imageType string, data []byte) error {
	start := time.Now()
	err := i.next.UploadImage(ctx, bucket, node, imageType, data)
	i.metrics.ObserveStorage(i.provider, OpUploadImage, err, time.Since(start))
	return err
}
