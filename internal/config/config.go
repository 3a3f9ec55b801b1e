package config

import "os"

// Config holds the environment-driven settings for optional infrastructure.
// Every field is optional: features are enabled by setting their variables.
type Config struct {
	WarehouseURL string // LOOM_WAREHOUSE_URL (enables `loom run`)
	RegistryURL  string // LOOM_REGISTRY_URL (enables run history when set)
	NATSURL      string // LOOM_NATS_URL (optional, empty = no event publishing)

	// Artifact upload settings
	S3Bucket   string // LOOM_S3_BUCKET (enables `loom upload` when set)
	S3Endpoint string // LOOM_S3_ENDPOINT (custom endpoint for MinIO)
	S3Region   string // LOOM_S3_REGION (default "us-east-1")
	S3Prefix   string // LOOM_S3_PREFIX (default "loom/artifacts")
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		WarehouseURL: os.Getenv("LOOM_WAREHOUSE_URL"),
		RegistryURL:  os.Getenv("LOOM_REGISTRY_URL"),
		NATSURL:      os.Getenv("LOOM_NATS_URL"),
		S3Bucket:     os.Getenv("LOOM_S3_BUCKET"),
		S3Endpoint:   os.Getenv("LOOM_S3_ENDPOINT"),
		S3Region:     envOrDefault("LOOM_S3_REGION", "us-east-1"),
		S3Prefix:     envOrDefault("LOOM_S3_PREFIX", "loom/artifacts"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
