package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// NATSConfig holds NATS JetStream configuration for the activity recorder
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// WorkerPoolConfig holds worker pool sizing
type WorkerPoolConfig struct {
	PoolSize  int `mapstructure:"pool_size"`
	QueueSize int `mapstructure:"queue_size"`
}

// FulfillmentConfig holds the retry/backoff policy of the fulfillment pipeline
type FulfillmentConfig struct {
	// MaxAttempts is the attempt budget for transient failures before a request fails
	MaxAttempts int `mapstructure:"max_attempts"`
	// BackoffBase seeds the exponential re-dequeue delay after a transient failure
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	// BackoffCap bounds the re-dequeue delay
	BackoffCap time.Duration `mapstructure:"backoff_cap"`
	// PollInterval is the idle sleep between dequeue cycles
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// BatchSize is the number of due requests dequeued per cycle
	BatchSize int `mapstructure:"batch_size"`
	// FetchTimeout bounds a single adapter fetch call
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// BlacklistConfig holds the source blacklist policy
type BlacklistConfig struct {
	// FailureThreshold is the number of terminal failures within Window that
	// blacklists a source
	FailureThreshold int `mapstructure:"failure_threshold"`
	// Window is the rolling window the failure tally is counted over
	Window time.Duration `mapstructure:"window"`
}

// SourcesConfig maps source identifiers to their fetch endpoints
type SourcesConfig struct {
	// Endpoints maps a source name (e.g., "openlibrary") to its base URL
	Endpoints map[string]string `mapstructure:"endpoints"`
}

// APIConfig holds configuration for the API service
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Auth       AuthConfig     `mapstructure:"auth"`
}

// WorkerConfig holds configuration for the fulfillment worker service
type WorkerConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Database    DatabaseConfig    `mapstructure:"database"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Worker      WorkerPoolConfig  `mapstructure:"worker"`
	Fulfillment FulfillmentConfig `mapstructure:"fulfillment"`
	Blacklist   BlacklistConfig   `mapstructure:"blacklist"`
	Sources     SourcesConfig     `mapstructure:"sources"`
}

// LoadAPIConfig loads configuration for the API service
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	setDatabaseDefaults(v)
	setNATSDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !configNotFound(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use environment variables
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoadWorkerConfig loads configuration for the fulfillment worker service
func LoadWorkerConfig(configFile string, envPath string) (*WorkerConfig, error) {
	v := configureViper("worker", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	setDatabaseDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("worker.pool_size", 10)
	v.SetDefault("worker.queue_size", 256)
	v.SetDefault("fulfillment.max_attempts", 3)
	v.SetDefault("fulfillment.backoff_base", "30s")
	v.SetDefault("fulfillment.backoff_cap", "1h")
	v.SetDefault("fulfillment.poll_interval", "5s")
	v.SetDefault("fulfillment.batch_size", 50)
	v.SetDefault("fulfillment.fetch_timeout", "2m")
	v.SetDefault("blacklist.failure_threshold", 5)
	v.SetDefault("blacklist.window", "24h")

	if err := v.ReadInConfig(); err != nil {
		if !configNotFound(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use environment variables
	}

	var config WorkerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Fulfillment.MaxAttempts < 1 {
		return nil, errors.New("fulfillment.max_attempts must be at least 1")
	}
	if config.Blacklist.FailureThreshold < 1 {
		return nil, errors.New("blacklist.failure_threshold must be at least 1")
	}

	return &config, nil
}

// configNotFound reports whether the error means the config file is absent,
// which is fine: configuration then comes from defaults and environment variables
func configNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "10m")
}

func setNATSDefaults(v *viper.Viper) {
	v.SetDefault("nats.stream_name", "ACTIVITY")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/api/, cmd/worker/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("ST_REQUESTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Worker pool
		"worker.pool_size",
		"worker.queue_size",
		// Fulfillment policy
		"fulfillment.max_attempts",
		"fulfillment.backoff_base",
		"fulfillment.backoff_cap",
		"fulfillment.poll_interval",
		"fulfillment.batch_size",
		"fulfillment.fetch_timeout",
		// Blacklist policy
		"blacklist.failure_threshold",
		"blacklist.window",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
