package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"

	"sensor-collector/core/sensor"

	"go.uber.org/zap"
)

const (
	ContentTypeJSON = "application/json"
	// ContentTypeImage is sent for every image regardless of the declared image type.
	ContentTypeImage = "image/png"

	OpSaveNode    = "save_node"
	OpUploadImage = "upload_image"
)

var imageTypePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Client persists node records and their images to an object store.
type Client interface {
	// SaveNode writes node as JSON to <prefix>/<uuid>.json, overwriting any previous record.
	SaveNode(ctx context.Context, bucket string, node *sensor.Node) error
	// UploadImage writes data to <prefix>/images/<uuid>.<imageType>.
	UploadImage(ctx context.Context, bucket string, node *sensor.Node, imageType string, data []byte) error
}

// NodeKey returns the object key of a node record.
func NodeKey(prefix string, node *sensor.Node) string {
	return path.Join(prefix, node.UUID()+".json")
}

// ImageKey returns the object key of a node image.
func ImageKey(prefix string, node *sensor.Node, imageType string) string {
	return path.Join(prefix, "images", node.UUID()+"."+imageType)
}

// backend is the bucket/object surface an adapter needs from its store.
type backend interface {
	ensureBucket(ctx context.Context, bucket string) error
	putObject(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// objectClient implements Client on top of a backend. Both adapters share it so
// that they only differ in transport and authentication.
type objectClient struct {
	provider Provider
	backend  backend
	prefix   string
	logger   *zap.Logger
}

func (c *objectClient) SaveNode(ctx context.Context, bucket string, node *sensor.Node) error {
	if node == nil || !sensor.ValidUUID(node.UUID()) {
		return c.fail(OpSaveNode, bucket, "", ErrInvalidNode)
	}
	key := NodeKey(c.prefix, node)

	body, err := json.Marshal(node)
	if err != nil {
		return c.fail(OpSaveNode, bucket, key, fmt.Errorf("failed to encode node: %w", err))
	}

	if err := c.write(ctx, bucket, key, body, ContentTypeJSON); err != nil {
		return c.fail(OpSaveNode, bucket, key, err)
	}

	c.logger.Info("Saved node",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("uuid", node.UUID()),
	)
	return nil
}

func (c *objectClient) UploadImage(ctx context.Context, bucket string, node *sensor.Node, imageType string, data []byte) error {
	if node == nil || !sensor.ValidUUID(node.UUID()) {
		return c.fail(OpUploadImage, bucket, "", ErrInvalidNode)
	}
	imageType = strings.TrimPrefix(strings.TrimSpace(imageType), ".")
	if !imageTypePattern.MatchString(imageType) {
		return c.fail(OpUploadImage, bucket, "", fmt.Errorf("invalid image type %q", imageType))
	}
	key := ImageKey(c.prefix, node, imageType)

	if !strings.EqualFold(imageType, "png") {
		c.logger.Warn("Image type does not match stored content type",
			zap.String("image_type", imageType),
			zap.String("content_type", ContentTypeImage),
		)
	}

	if err := c.write(ctx, bucket, key, data, ContentTypeImage); err != nil {
		return c.fail(OpUploadImage, bucket, key, err)
	}

	c.logger.Info("Uploaded image",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return nil
}

func (c *objectClient) write(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	if err := c.backend.ensureBucket(ctx, bucket); err != nil {
		return err
	}
	return c.backend.putObject(ctx, bucket, key, body, contentType)
}

func (c *objectClient) fail(op, bucket, key string, err error) error {
	c.logger.Error("Storage operation failed",
		zap.String("provider", string(c.provider)),
		zap.String("operation", op),
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Error(err),
	)
	return &OperationError{
		Provider:  c.provider,
		Operation: op,
		Bucket:    bucket,
		Key:       key,
		Err:       err,
	}
}
