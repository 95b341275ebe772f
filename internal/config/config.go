package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Analyzer  AnalyzerConfig
	Store     StoreConfig
	Device    DeviceConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Sentry    SentryConfig
	Workspace WorkspaceConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AnalyzerConfig holds settings for the document analysis provider.
type AnalyzerConfig struct {
	Provider       string `mapstructure:"provider"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSecs    int    `mapstructure:"timeout_secs"`
	BenchmarksFile string `mapstructure:"benchmarks_file"`
}

// StoreConfig selects and configures the durable key-value backend.
type StoreConfig struct {
	Backend    string `mapstructure:"backend"`
	Codec      string `mapstructure:"codec"`
	HistoryCap int    `mapstructure:"history_cap"`
	KeyPrefix  string `mapstructure:"key_prefix"`

	FilePath string `mapstructure:"file_path"`

	RedisURL string `mapstructure:"redis_url"`

	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Table     string `mapstructure:"table"`
}

// DeviceConfig holds device token signing settings.
type DeviceConfig struct {
	Secret      string        `mapstructure:"secret"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
	Issuer      string        `mapstructure:"issuer"`
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the upload limit in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// RateLimitConfig bounds how often one device may start an analysis.
type RateLimitConfig struct {
	AnalyzePerMinute float64 `mapstructure:"analyze_per_minute"`
	Burst            int     `mapstructure:"burst"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// WorkspaceConfig controls how long idle per-device state stays in memory.
type WorkspaceConfig struct {
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

// Load reads configuration from environment variables with the MEDLENS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Analyzer defaults
	v.SetDefault("analyzer.provider", "gemini")
	v.SetDefault("analyzer.api_key", "")
	v.SetDefault("analyzer.model", "gemini-2.5-flash")
	v.SetDefault("analyzer.endpoint", "")
	v.SetDefault("analyzer.timeout_secs", 120)
	v.SetDefault("analyzer.benchmarks_file", "")

	// Store defaults
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.codec", "json")
	v.SetDefault("store.history_cap", 10)
	v.SetDefault("store.key_prefix", "medlens")
	v.SetDefault("store.file_path", "data/local_storage.json")
	v.SetDefault("store.redis_url", "redis://localhost:6379/0")
	v.SetDefault("store.region", "ap-south-1")
	v.SetDefault("store.endpoint", "")
	v.SetDefault("store.bucket", "medlens-local-storage")
	v.SetDefault("store.table", "medlens_local_storage")

	// Device defaults
	v.SetDefault("device.secret", "change-me-in-production")
	v.SetDefault("device.token_expiry", "720h")
	v.SetDefault("device.issuer", "medlens")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 20)

	// Rate limit defaults
	v.SetDefault("rate_limit.analyze_per_minute", 6)
	v.SetDefault("rate_limit.burst", 2)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Sentry defaults
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "")

	// Workspace defaults
	v.SetDefault("workspace.idle_ttl", "2h")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "MEDLENS_SERVER_PORT",
		"server.read_timeout":           "MEDLENS_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "MEDLENS_SERVER_WRITE_TIMEOUT",
		"server.environment":            "MEDLENS_SERVER_ENVIRONMENT",
		"log.level":                     "MEDLENS_LOG_LEVEL",
		"log.format":                    "MEDLENS_LOG_FORMAT",
		"analyzer.provider":             "MEDLENS_ANALYZER_PROVIDER",
		"analyzer.api_key":              "MEDLENS_ANALYZER_API_KEY",
		"analyzer.model":                "MEDLENS_ANALYZER_MODEL",
		"analyzer.endpoint":             "MEDLENS_ANALYZER_ENDPOINT",
		"analyzer.timeout_secs":         "MEDLENS_ANALYZER_TIMEOUT_SECS",
		"analyzer.benchmarks_file":      "MEDLENS_ANALYZER_BENCHMARKS_FILE",
		"store.backend":                 "MEDLENS_STORE_BACKEND",
		"store.codec":                   "MEDLENS_STORE_CODEC",
		"store.history_cap":             "MEDLENS_STORE_HISTORY_CAP",
		"store.key_prefix":              "MEDLENS_STORE_KEY_PREFIX",
		"store.file_path":               "MEDLENS_STORE_FILE_PATH",
		"store.redis_url":               "MEDLENS_STORE_REDIS_URL",
		"store.region":                  "MEDLENS_STORE_REGION",
		"store.endpoint":                "MEDLENS_STORE_ENDPOINT",
		"store.access_key":              "MEDLENS_STORE_ACCESS_KEY",
		"store.secret_key":              "MEDLENS_STORE_SECRET_KEY",
		"store.bucket":                  "MEDLENS_STORE_BUCKET",
		"store.table":                   "MEDLENS_STORE_TABLE",
		"device.secret":                 "MEDLENS_DEVICE_SECRET",
		"device.token_expiry":           "MEDLENS_DEVICE_TOKEN_EXPIRY",
		"device.issuer":                 "MEDLENS_DEVICE_ISSUER",
		"upload.max_file_size_mb":       "MEDLENS_UPLOAD_MAX_FILE_SIZE_MB",
		"rate_limit.analyze_per_minute": "MEDLENS_RATE_LIMIT_ANALYZE_PER_MINUTE",
		"rate_limit.burst":              "MEDLENS_RATE_LIMIT_BURST",
		"cors.allowed_origins":          "MEDLENS_CORS_ALLOWED_ORIGINS",
		"sentry.dsn":                    "MEDLENS_SENTRY_DSN",
		"sentry.environment":            "MEDLENS_SENTRY_ENVIRONMENT",
		"workspace.idle_ttl":            "MEDLENS_WORKSPACE_IDLE_TTL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if MEDLENS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MEDLENS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Analyzer = AnalyzerConfig{
		Provider:       v.GetString("analyzer.provider"),
		APIKey:         v.GetString("analyzer.api_key"),
		Model:          v.GetString("analyzer.model"),
		Endpoint:       v.GetString("analyzer.endpoint"),
		TimeoutSecs:    v.GetInt("analyzer.timeout_secs"),
		BenchmarksFile: v.GetString("analyzer.benchmarks_file"),
	}
	cfg.Store = StoreConfig{
		Backend:    v.GetString("store.backend"),
		Codec:      v.GetString("store.codec"),
		HistoryCap: v.GetInt("store.history_cap"),
		KeyPrefix:  v.GetString("store.key_prefix"),
		FilePath:   v.GetString("store.file_path"),
		RedisURL:   v.GetString("store.redis_url"),
		Region:     v.GetString("store.region"),
		Endpoint:   v.GetString("store.endpoint"),
		AccessKey:  v.GetString("store.access_key"),
		SecretKey:  v.GetString("store.secret_key"),
		Bucket:     v.GetString("store.bucket"),
		Table:      v.GetString("store.table"),
	}
	cfg.Device = DeviceConfig{
		Secret:      v.GetString("device.secret"),
		TokenExpiry: v.GetDuration("device.token_expiry"),
		Issuer:      v.GetString("device.issuer"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.RateLimit = RateLimitConfig{
		AnalyzePerMinute: v.GetFloat64("rate_limit.analyze_per_minute"),
		Burst:            v.GetInt("rate_limit.burst"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Sentry = SentryConfig{
		DSN:         v.GetString("sentry.dsn"),
		Environment: v.GetString("sentry.environment"),
	}
	if cfg.Sentry.Environment == "" {
		cfg.Sentry.Environment = cfg.Server.Environment
	}

	cfg.Workspace = WorkspaceConfig{
		IdleTTL: v.GetDuration("workspace.idle_ttl"),
	}

	return cfg, nil
}
