package nodes

import (
	"sensor-collector/core/dispatch"
	"sensor-collector/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature exposes node submission over HTTP.
type Feature struct {
	service *Service
}

// NewFeature creates the nodes feature.
func NewFeature(client storage.Client, dispatcher *dispatch.Dispatcher, bucket string, logger *zap.Logger) *Feature {
	return &Feature{service: NewService(client, dispatcher, bucket, logger)}
}

func (f *Feature) Name() string {
	return "nodes"
}

func (f *Feature) IsEnabled() bool {
	return f.service.client != nil
}

func (f *Feature) Load(app fiber.Router) error {
	NewHandler(f.service).RegisterRoutes(app)
	return nil
}
