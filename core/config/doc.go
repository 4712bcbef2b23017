// Package config provides configuration management for the sensor collector.
//
// It uses Viper to read environment variables, optionally preloaded from a .env
// file. Defaults come from the `default` struct tags of each section.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, body limit (SERVER_PORT, SERVER_API_KEY, ...)
//   - Storage: provider and its credentials (STORAGE_PROVIDER, STORAGE_ENDPOINT, ...)
//   - Log: level and format (LOG_LEVEL, LOG_FORMAT)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := storage.NewClient(cfg.Storage.Provider, cfg.Storage.Options(), logger)
package config
