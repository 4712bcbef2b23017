package storage_test

import (
	"testing"

	"sensor-collector/core/sensor"
	"sensor-collector/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	node, err := sensor.ParseRef("6f1c1f7e-5d2b-4a53-9a3e-0f1d2c3b4a59")
	require.NoError(t, err)

	tests := []struct {
		name   string
		prefix string
		node   string
		image  string
	}{
		{"NoPrefix", "", "6f1c1f7e-5d2b-4a53-9a3e-0f1d2c3b4a59.json", "images/6f1c1f7e-5d2b-4a53-9a3e-0f1d2c3b4a59.png"},
		{"Prefix", "minio-data", "minio-data/6f1c1f7e-5d2b-4a53-9a3e-0f1d2c3b4a59.json", "minio-data/images/6f1c1f7e-5d2b-4a53-9a3e-0f1d2c3b4a59.png"},
		{"TrailingSlash", "minio-data/", "minio-data/6f1c1f7e-5d2b-4a53-9a3e-0f1d2c3b4a59.json", "minio-data/images/6f1c1f7e-5d2b-4a53-9a3e-0f1d2c3b4a59.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.node, storage.NodeKey(tt.prefix, node))
			assert.Equal(t, tt.image, storage.ImageKey(tt.prefix, node, "png"))
		})
	}
}
