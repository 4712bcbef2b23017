package nodes

import (
	"context"

	"sensor-collector/core/dispatch"
	"sensor-collector/core/sensor"
	"sensor-collector/core/storage"

	"go.uber.org/zap"
)

// DefaultBucket is used when no bucket is configured.
const DefaultBucket = "nodes"

// Image is a photo attached to a node.
type Image struct {
	Node *sensor.Node
	Type string
	Data []byte
}

// Service submits nodes and images to storage in the background.
type Service struct {
	client     storage.Client
	dispatcher *dispatch.Dispatcher
	bucket     string
	logger     *zap.Logger
}

// NewService creates a new node service.
func NewService(client storage.Client, dispatcher *dispatch.Dispatcher, bucket string, logger *zap.Logger) *Service {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:     client,
		dispatcher: dispatcher,
		bucket:     bucket,
		logger:     logger,
	}
}

// Bucket returns the bucket nodes are written to.
func (s *Service) Bucket() string {
	return s.bucket
}

// Submit saves the node record in the background.
func (s *Service) Submit(ctx context.Context, node *sensor.Node) *dispatch.Task {
	s.logger.Debug("Dispatching node save", zap.String("uuid", node.UUID()))
	return s.dispatcher.Go(ctx, storage.OpSaveNode+":"+node.UUID(), func(ctx context.Context) error {
		return s.client.SaveNode(ctx, s.bucket, node)
	})
}

// AttachImage uploads one image of node in the background.
func (s *Service) AttachImage(ctx context.Context, node *sensor.Node, imageType string, data []byte) *dispatch.Task {
	s.logger.Debug("Dispatching image upload",
		zap.String("uuid", node.UUID()),
		zap.String("image_type", imageType),
	)
	return s.dispatcher.Go(ctx, storage.OpUploadImage+":"+node.UUID(), func(ctx context.Context) error {
		return s.client.UploadImage(ctx, s.bucket, node, imageType, data)
	})
}

// SubmitWithImages fires the node save and every image upload independently.
// The returned tasks complete in any order; one failing does not affect the others.
func (s *Service) SubmitWithImages(ctx context.Context, node *sensor.Node, images []Image) []*dispatch.Task {
	tasks := []*dispatch.Task{s.Submit(ctx, node)}
	for _, img := range images {
		target := img.Node
		if target == nil {
			target = node
		}
		tasks = append(tasks, s.AttachImage(ctx, target, img.Type, img.Data))
	}
	return tasks
}
