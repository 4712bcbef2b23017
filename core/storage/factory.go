package storage

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the adapter matching cfg.
func New(cfg ProviderConfig, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch c := cfg.(type) {
	case S3Config:
		return NewS3Client(c, logger.With(zap.String("provider", string(ProviderAWS))))
	case MinioConfig:
		return NewMinioClient(c, logger.With(zap.String("provider", string(ProviderMinio))))
	default:
		return nil, fmt.Errorf("%w: config type %T", ErrUnknownProvider, cfg)
	}
}

// NewClient resolves provider and cfg into a Client. Configuration errors are
// returned before anything is constructed.
func NewClient(provider string, cfg map[string]string, logger *zap.Logger) (Client, error) {
	pc, err := ParseConfig(provider, cfg)
	if err != nil {
		return nil, err
	}
	return New(pc, logger)
}
