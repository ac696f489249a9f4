package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/munify/doc_vault/pkg/storage"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultExposeHeaders lists the download response headers browsers may read.
	DefaultExposeHeaders = "Content-Disposition,X-Checksum-Sha256"
	DefaultLockPrefix    = "doc_vault:file_lock:"
)

// Config captures service level configuration loaded from config.yaml and
// overridden by environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Storage  storage.Config `yaml:"storage"`
	CORS     CORSConfig     `yaml:"cors"`
	Upload   UploadConfig   `yaml:"upload"`
	Redis    RedisConfig    `yaml:"redis"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig defines HTTP server options.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig controls hlog verbosity.
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig defines the Prometheus listener. An empty address disables it.
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// RedisConfig defines the Redis connection backing per-file write locks.
// Durations accept Go duration strings such as "5s".
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Address      string        `yaml:"address"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// LockPrefix namespaces lock keys so several deployments can share one Redis.
	LockPrefix  string        `yaml:"lock_prefix"`
	LockTTL     time.Duration `yaml:"lock_ttl"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// CORSConfig defines CORS middleware settings. MaxAge is in seconds.
type CORSConfig struct {
	AllowOrigin      string `yaml:"allow_origin"`
	AllowMethods     string `yaml:"allow_methods"`
	AllowHeaders     string `yaml:"allow_headers"`
	ExposeHeaders    string `yaml:"expose_headers"`
	AllowCredentials bool   `yaml:"allow_credentials"`
	MaxAge           int    `yaml:"max_age"`
}

// UploadConfig defines file upload constraints.
type UploadConfig struct {
	MaxSize           int64    `yaml:"max_size"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	AllowedTypes      []string `yaml:"allowed_types"`
}

// DatabaseConfig defines the database backend configuration.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig contains SQLite specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// MySQLConfig contains MySQL specific connection details.
type MySQLConfig struct {
	DSN string `yaml:"dsn"`
}

// PostgresConfig contains PostgreSQL specific connection details.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// Load reads a YAML configuration file from the provided path and applies
// environment overrides. It searches in the current working directory first,
// then next to the binary executable.
func Load(name string) (*Config, error) {
	cfg := defaultConfig()

	configPath := findConfigFile(name)
	if configPath == "" {
		log.Printf("Warning: config file %q not found, using defaults", name)
	} else {
		log.Printf("Loading config from: %s", configPath)
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer func() { _ = f.Close() }()

		decoder := yaml.NewDecoder(f)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload.max_size must be positive")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("upload.allowed_extensions must not be empty")
	}
	switch strings.ToLower(c.Storage.Type) {
	case "local", "s3":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path: "data/doc_vault.db",
			},
		},
		Storage: storage.DefaultConfig(),
		CORS: CORSConfig{
			AllowOrigin:      "*",
			AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
			AllowHeaders:     "*",
			ExposeHeaders:    DefaultExposeHeaders,
			AllowCredentials: false,
			MaxAge:           600,
		},
		Upload: UploadConfig{
			MaxSize: 10 * 1024 * 1024, // 10MB
			AllowedExtensions: []string{
				".pdf", ".jpg", ".jpeg", ".png", ".doc", ".docx",
				".xls", ".xlsx", ".csv", ".mp4", ".mov", ".zip",
			},
			AllowedTypes: []string{
				"application/pdf",
				"image/jpeg",
				"image/png",
				"application/msword",
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				"application/vnd.ms-excel",
				"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
				"text/csv",
				"text/plain",
				"video/mp4",
				"video/quicktime",
				"application/zip",
			},
		},
		Redis: RedisConfig{
			Address:      "localhost:6379",
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			LockPrefix:   DefaultLockPrefix,
			LockTTL:      30 * time.Second,
			LockTimeout:  5 * time.Second,
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = "data/doc_vault.db"
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.Local.BasePath == "" {
		cfg.Storage.Local.BasePath = storage.DefaultConfig().Local.BasePath
	}
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = "us-east-1"
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Redis.LockPrefix == "" {
		cfg.Redis.LockPrefix = DefaultLockPrefix
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 30 * time.Second
	}
	if cfg.Redis.LockTimeout <= 0 {
		cfg.Redis.LockTimeout = 5 * time.Second
	}
	for i, ext := range cfg.Upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Upload.AllowedExtensions[i] = ext
	}
}

// applyEnv overrides file values with environment variables when they are set.
func applyEnv(cfg *Config) {
	envString("SERVER_ADDRESS", &cfg.Server.Address)
	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("METRICS_ADDRESS", &cfg.Metrics.Address)

	envString("DATABASE_DRIVER", &cfg.Database.Driver)
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		switch strings.ToLower(cfg.Database.Driver) {
		case "mysql":
			cfg.Database.MySQL.DSN = dsn
		case "postgres", "postgresql":
			cfg.Database.Postgres.DSN = dsn
		default:
			cfg.Database.SQLite.Path = dsn
		}
	}

	envString("STORAGE_TYPE", &cfg.Storage.Type)
	envString("LOCAL_STORAGE_PATH", &cfg.Storage.Local.BasePath)
	envString("LOCAL_SIGN_SECRET", &cfg.Storage.Local.SignSecret)
	envString("LOCAL_PUBLIC_URL", &cfg.Storage.Local.PublicURL)
	envString("S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	envString("S3_REGION", &cfg.Storage.S3.Region)
	envString("S3_BUCKET", &cfg.Storage.S3.Bucket)
	envString("S3_ACCESS_KEY", &cfg.Storage.S3.AccessKey)
	envString("S3_SECRET_KEY", &cfg.Storage.S3.SecretKey)
	envBool("S3_PATH_STYLE", &cfg.Storage.S3.PathStyle)

	envInt64("MAX_UPLOAD_SIZE", &cfg.Upload.MaxSize)
	envList("ALLOWED_EXTENSIONS", &cfg.Upload.AllowedExtensions)
	envList("ALLOWED_TYPES", &cfg.Upload.AllowedTypes)

	envBool("REDIS_ENABLED", &cfg.Redis.Enabled)
	envString("REDIS_ADDRESS", &cfg.Redis.Address)
	envString("REDIS_PASSWORD", &cfg.Redis.Password)
	envInt("REDIS_DB", &cfg.Redis.DB)
	envInt("REDIS_POOL_SIZE", &cfg.Redis.PoolSize)
	envString("REDIS_LOCK_PREFIX", &cfg.Redis.LockPrefix)

	envString("CORS_ALLOW_ORIGIN", &cfg.CORS.AllowOrigin)
	envString("CORS_EXPOSE_HEADERS", &cfg.CORS.ExposeHeaders)
	envInt("CORS_MAX_AGE", &cfg.CORS.MaxAge)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envInt64(key string, dst *int64) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = i
		}
	}
}

func envList(key string, dst *[]string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parts := strings.Split(v, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	*dst = list
}

// findConfigFile searches for a config file in the current directory first,
// then next to the binary executable. Returns the full path or empty string.
func findConfigFile(name string) string {
	if _, err := os.Stat(name); err == nil {
		abs, _ := filepath.Abs(name)
		return abs
	}

	exe, err := os.Executable()
	if err == nil {
		candidate := filepath.Join(filepath.Dir(exe), name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
