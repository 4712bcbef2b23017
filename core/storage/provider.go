package storage

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Provider names a storage backend.
type Provider string

const (
	ProviderAWS   Provider = "aws"
	ProviderMinio Provider = "minio"
)

// Configuration keys understood by ParseConfig.
const (
	KeyAccessKey      = "accessKey"
	KeySecretKey      = "secretKey"
	KeyRegion         = "region"
	KeyEndpoint       = "endpoint"
	KeyUsername       = "username"
	KeyPassword       = "password"
	KeyPrefix         = "prefix"
	KeyUsePathStyle   = "usePathStyle"
	KeyTimeoutSeconds = "timeoutSeconds"
)

// Providers returns the known providers.
func Providers() []Provider {
	return []Provider{ProviderAWS, ProviderMinio}
}

// RequiredKeys returns the configuration keys p cannot be built without.
func (p Provider) RequiredKeys() []string {
	switch p {
	case ProviderAWS:
		return []string{KeyAccessKey, KeySecretKey, KeyRegion}
	case ProviderMinio:
		return []string{KeyEndpoint, KeyUsername, KeyPassword}
	default:
		return nil
	}
}

// ParseProvider resolves a provider name, case-insensitively.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case ProviderAWS, ProviderMinio:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

// ProviderConfig is the typed configuration of one provider. Its implementations
// are S3Config and MinioConfig.
type ProviderConfig interface {
	Provider() Provider
	validate() error
}

// S3Config configures the AWS S3 adapter.
type S3Config struct {
	AccessKey string
	SecretKey string
	Region    string
	// Endpoint overrides the AWS endpoint (S3-compatible services).
	Endpoint       string
	Prefix         string
	UsePathStyle   bool
	TimeoutSeconds int
}

// Provider implements ProviderConfig.
func (S3Config) Provider() Provider { return ProviderAWS }

func (c S3Config) validate() error {
	return requireFields(ProviderAWS,
		field{KeyAccessKey, c.AccessKey},
		field{KeySecretKey, c.SecretKey},
		field{KeyRegion, c.Region},
	)
}

// MinioConfig configures the MinIO adapter.
type MinioConfig struct {
	// Endpoint may carry a scheme; https:// enables TLS.
	Endpoint       string
	Username       string
	Password       string
	Region         string
	Prefix         string
	TimeoutSeconds int
}

// Provider implements ProviderConfig.
func (MinioConfig) Provider() Provider { return ProviderMinio }

func (c MinioConfig) validate() error {
	return requireFields(ProviderMinio,
		field{KeyEndpoint, c.Endpoint},
		field{KeyUsername, c.Username},
		field{KeyPassword, c.Password},
	)
}

type field struct {
	key   string
	value string
}

func requireFields(p Provider, fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Provider: p, Field: f.key}
		}
	}
	return nil
}

// ParseConfig turns a provider name and a key/value map into a typed configuration.
// It fails on the first missing required key and never touches the network.
func ParseConfig(provider string, cfg map[string]string) (ProviderConfig, error) {
	p, err := ParseProvider(provider)
	if err != nil {
		return nil, err
	}

	timeout, err := optionalInt(p, cfg, KeyTimeoutSeconds)
	if err != nil {
		return nil, err
	}

	var pc ProviderConfig
	switch p {
	case ProviderAWS:
		pathStyle, err := optionalBool(p, cfg, KeyUsePathStyle)
		if err != nil {
			return nil, err
		}
		pc = S3Config{
			AccessKey:      cfg[KeyAccessKey],
			SecretKey:      cfg[KeySecretKey],
			Region:         cfg[KeyRegion],
			Endpoint:       cfg[KeyEndpoint],
			Prefix:         cfg[KeyPrefix],
			UsePathStyle:   pathStyle,
			TimeoutSeconds: timeout,
		}
	case ProviderMinio:
		pc = MinioConfig{
			Endpoint:       cfg[KeyEndpoint],
			Username:       cfg[KeyUsername],
			Password:       cfg[KeyPassword],
			Region:         cfg[KeyRegion],
			Prefix:         cfg[KeyPrefix],
			TimeoutSeconds: timeout,
		}
	}

	if err := pc.validate(); err != nil {
		return nil, err
	}
	return pc, nil
}

func optionalInt(p Provider, cfg map[string]string, key string) (int, error) {
	raw, ok := cfg[key]
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("%s storage config: %w %q: %v", p, ErrInvalidField, key, err)
	}
	return v, nil
}

func optionalBool(p Provider, cfg map[string]string, key string) (bool, error) {
	raw, ok := cfg[key]
	if !ok || raw == "" {
		return false, nil
	}
	v, err := cast.ToBoolE(raw)
	if err != nil {
		return false, fmt.Errorf("%s storage config: %w %q: %v", p, ErrInvalidField, key, err)
	}
	return v, nil
}
