package storage

import "strconv"

// Config holds configuration for the storage provider.
type Config struct {
	// Provider selects the backend (aws, minio).
	Provider string `mapstructure:"provider" default:"minio"`
	// Bucket is the name of the bucket nodes are stored in.
	Bucket string `mapstructure:"bucket" default:"nodes"`
	// Prefix is prepended to every object key.
	Prefix string `mapstructure:"prefix" default:""`
	// Endpoint is the URL of the storage service (required for minio, optional for aws).
	Endpoint string `mapstructure:"endpoint" default:""`
	// AccessKey is the AWS access key ID.
	AccessKey string `mapstructure:"access_key" default:""`
	// SecretKey is the AWS secret access key.
	SecretKey string `mapstructure:"secret_key" default:""`
	// Username is the MinIO user.
	Username string `mapstructure:"username" default:""`
	// Password is the MinIO password.
	Password string `mapstructure:"password" default:""`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// UsePathStyle forces path-style addressing on the aws provider.
	UsePathStyle bool `mapstructure:"use_path_style" default:"false"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Options renders the settings relevant to the configured provider as the
// key/value map consumed by NewClient. Empty values are left out.
func (c Config) Options() map[string]string {
	opts := map[string]string{}
	set := func(key, value string) {
		if value != "" {
			opts[key] = value
		}
	}

	// An unknown provider renders no provider keys; NewClient reports it.
	p, _ := ParseProvider(c.Provider)
	switch p {
	case ProviderAWS:
		set(KeyAccessKey, c.AccessKey)
		set(KeySecretKey, c.SecretKey)
		set(KeyEndpoint, c.Endpoint)
		if c.UsePathStyle {
			set(KeyUsePathStyle, "true")
		}
	case ProviderMinio:
		set(KeyEndpoint, c.Endpoint)
		set(KeyUsername, c.Username)
		set(KeyPassword, c.Password)
	}

	set(KeyRegion, c.Region)
	set(KeyPrefix, c.Prefix)
	if c.TimeoutSeconds > 0 {
		set(KeyTimeoutSeconds, strconv.Itoa(c.TimeoutSeconds))
	}
	return opts
}
