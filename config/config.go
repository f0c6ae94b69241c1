package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const VERSION = "1.0"

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverBolt     = "bolt"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Storage     StorageConfig
	Render      RenderConfig
	Tracing     TracingConfig
	Environment string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Port            int
	Host            string
	CORSAllowOrigin string
	// ExportRateLimit caps render requests per client per minute, 0 disables it
	ExportRateLimit int
	// TrustProxy keys rate limiting on X-Forwarded-For. Only enable it behind a proxy that sets the header.
	TrustProxy      bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// StorageConfig selects where templates are persisted
type StorageConfig struct {
	Driver   string
	BoltPath string
}

// RenderConfig holds serializer defaults applied to every render request
type RenderConfig struct {
	GroupGap     int
	ContentWidth int
	IconBaseURL  string
	MergeData    map[string]interface{}
	// CacheTTL of 0 disables the render cache
	CacheTTL  time.Duration
	CacheSize int
}

type TracingConfig struct {
	Enabled             bool
	ServiceName         string
	SamplingProbability float64

	// Trace exporter configuration
	TraceExporter string // "jaeger", "zipkin", "datadog", "none"

	// Jaeger settings
	JaegerEndpoint string

	// Zipkin settings
	ZipkinEndpoint string

	// Datadog settings
	DatadogAgentAddress string
	DatadogAPIKey       string

	// General agent endpoint (for exporters that support a common agent)
	AgentEndpoint string

	// Metrics exporter configuration
	MetricsExporter string // "prometheus", "datadog", "none" or comma-separated list
	PrometheusPort  int
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	// Try to load .env file but don't require it
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("SERVER_EXPORT_RATE_LIMIT", 30)
	v.SetDefault("SERVER_TRUST_PROXY", false)
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "mailblocks")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("BOLT_PATH", "mailblocks.db")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	// Render defaults
	v.SetDefault("RENDER_GROUP_GAP", 10)
	v.SetDefault("RENDER_CONTENT_WIDTH", 600)
	v.SetDefault("RENDER_ICON_BASE_URL", "/icons")
	v.SetDefault("RENDER_MERGE_DATA", "")
	v.SetDefault("RENDER_CACHE_TTL", "5m")
	v.SetDefault("RENDER_CACHE_SIZE", 500)

	// Default tracing config
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SERVICE_NAME", "mailblocks-api")
	v.SetDefault("TRACING_SAMPLING_PROBABILITY", 0.1)
	v.SetDefault("TRACING_TRACE_EXPORTER", "none")
	v.SetDefault("TRACING_JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	v.SetDefault("TRACING_ZIPKIN_ENDPOINT", "http://localhost:9411/api/v2/spans")
	v.SetDefault("TRACING_DATADOG_AGENT_ADDRESS", "localhost:8126")
	v.SetDefault("TRACING_DATADOG_API_KEY", "")
	v.SetDefault("TRACING_AGENT_ENDPOINT", "localhost:8126")
	v.SetDefault("TRACING_METRICS_EXPORTER", "none")
	v.SetDefault("TRACING_PROMETHEUS_PORT", 9464)

	// Load environment file if specified
	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	driver := strings.ToLower(v.GetString("STORAGE_DRIVER"))
	if driver != StorageDriverPostgres && driver != StorageDriverBolt {
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q, expected %q or %q", driver, StorageDriverPostgres, StorageDriverBolt)
	}

	mergeData, err := ParseMergeData(v.GetString("RENDER_MERGE_DATA"))
	if err != nil {
		return nil, fmt.Errorf("invalid RENDER_MERGE_DATA: %w", err)
	}

	cacheTTL := v.GetDuration("RENDER_CACHE_TTL")
	if cacheTTL < 0 {
		return nil, fmt.Errorf("invalid RENDER_CACHE_TTL %q", v.GetString("RENDER_CACHE_TTL"))
	}
	if v.GetInt("SERVER_EXPORT_RATE_LIMIT") < 0 {
		return nil, fmt.Errorf("invalid SERVER_EXPORT_RATE_LIMIT %d", v.GetInt("SERVER_EXPORT_RATE_LIMIT"))
	}

	config := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			CORSAllowOrigin: v.GetString("SERVER_CORS_ALLOW_ORIGIN"),
			ExportRateLimit: v.GetInt("SERVER_EXPORT_RATE_LIMIT"),
			TrustProxy:      v.GetBool("SERVER_TRUST_PROXY"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Storage: StorageConfig{
			Driver:   driver,
			BoltPath: v.GetString("BOLT_PATH"),
		},
		Render: RenderConfig{
			GroupGap:     v.GetInt("RENDER_GROUP_GAP"),
			ContentWidth: v.GetInt("RENDER_CONTENT_WIDTH"),
			IconBaseURL:  v.GetString("RENDER_ICON_BASE_URL"),
			MergeData:    mergeData,
			CacheTTL:     cacheTTL,
			CacheSize:    v.GetInt("RENDER_CACHE_SIZE"),
		},
		Tracing: TracingConfig{
			Enabled:             v.GetBool("TRACING_ENABLED"),
			ServiceName:         v.GetString("TRACING_SERVICE_NAME"),
			SamplingProbability: v.GetFloat64("TRACING_SAMPLING_PROBABILITY"),
			TraceExporter:       v.GetString("TRACING_TRACE_EXPORTER"),
			JaegerEndpoint:      v.GetString("TRACING_JAEGER_ENDPOINT"),
			ZipkinEndpoint:      v.GetString("TRACING_ZIPKIN_ENDPOINT"),
			DatadogAgentAddress: v.GetString("TRACING_DATADOG_AGENT_ADDRESS"),
			DatadogAPIKey:       v.GetString("TRACING_DATADOG_API_KEY"),
			AgentEndpoint:       v.GetString("TRACING_AGENT_ENDPOINT"),
			MetricsExporter:     v.GetString("TRACING_METRICS_EXPORTER"),
			PrometheusPort:      v.GetInt("TRACING_PROMETHEUS_PORT"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	return config, nil
}

// ParseMergeData decodes the JSON object used as liquid data in previews. Empty input
// yields an empty map.
func ParseMergeData(raw string) (map[string]interface{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]interface{}{}, nil
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("error decoding merge data: %w", err)
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return data, nil
}

// DSN returns the lib/pq connection string for the configured database
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
