package storage

import (
	"fmt"
	"strings"

	"github.com/munify/doc_vault/pkg/storage/local"
	"github.com/munify/doc_vault/pkg/storage/s3"
)

// Config holds storage configuration.
type Config struct {
	Type  string      `yaml:"type"`
	Local LocalConfig `yaml:"local"`
	S3    S3Config    `yaml:"s3"`
}

// LocalConfig holds local storage configuration.
type LocalConfig struct {
	BasePath string `yaml:"base_path"`
	// SignSecret enables locally signed download URLs when set.
	SignSecret string `yaml:"sign_secret"`
	PublicURL  string `yaml:"public_url"`
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PathStyle bool   `yaml:"path_style"`
}

// New creates a storage adapter based on configuration. It is the single
// point where the backend is chosen; the result is immutable.
func New(cfg Config) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "local":
		return local.New(local.Config{
			BasePath:   cfg.Local.BasePath,
			SignSecret: cfg.Local.SignSecret,
			PublicURL:  cfg.Local.PublicURL,
		})

	case "s3":
		return s3.New(s3.Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PathStyle: cfg.S3.PathStyle,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// DefaultConfig returns the default storage configuration (local storage).
func DefaultConfig() Config {
	return Config{
		Type: "local",
		Local: LocalConfig{
			BasePath: local.DefaultBasePath,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}
