package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	JWT           JWTConfig           `envconfig:"JWT"`
	DynamoDB      DynamoDBConfig      `envconfig:"DYNAMODB"`
	Seed          SeedConfig          `envconfig:"SEED"`
	Observability ObservabilityConfig `envconfig:"OBSERVABILITY"`
	CORS          CORSConfig          `envconfig:"CORS"`
	Log           LogConfig           `envconfig:"LOG"`
	AWS           AWSConfig           `envconfig:"AWS"`
}

type AWSConfig struct {
	Region     string `envconfig:"REGION" default:"eu-west-1"`
	Profile    string `envconfig:"PROFILE" default:""`
	SecretName string `envconfig:"SECRET_NAME" default:""`
}

type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}

type RedisConfig struct {
	Address             string        `envconfig:"ADDRESS" default:"localhost:6379"`
	Password            string        `envconfig:"PASSWORD" default:""`
	Database            int           `envconfig:"DATABASE" default:"0"`
	MaxRetries          int           `envconfig:"MAX_RETRIES" default:"3"`
	PoolSize            int           `envconfig:"POOL_SIZE" default:"100"`
	PoolTimeout         time.Duration `envconfig:"POOL_TIMEOUT" default:"4s"`
	TLSEnabled          bool          `envconfig:"TLS_ENABLED" default:"false"`
	PasswordFromSecrets bool          `envconfig:"PASSWORD_FROM_SECRETS" default:"false"`
}

type JWTConfig struct {
	Secret       string        `envconfig:"SECRET" default:"change-me-in-production"` // HMAC signing key for self-issued tokens
	Issuer       string        `envconfig:"ISSUER" default:"findtrainer-auth"`
	Audience     string        `envconfig:"AUDIENCE" default:"findtrainer-api"`
	TokenTTL     time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	JWKSEndpoint string        `envconfig:"JWKS_ENDPOINT" required:"false"` // Optional: accept externally issued tokens too
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"10m"`
}

type DynamoDBConfig struct {
	UsersTableName    string `envconfig:"USERS_TABLE_NAME" default:"findtrainer-users"`
	RolesTableName    string `envconfig:"ROLES_TABLE_NAME" default:"findtrainer-roles"`
	CountersTableName string `envconfig:"COUNTERS_TABLE_NAME" default:"findtrainer-counters"`
	Region            string `envconfig:"REGION" default:"eu-west-1"`
}

type SeedConfig struct {
	DataPath        string        `envconfig:"DATA_PATH" default:"data/user_seed.json"`
	DefaultPassword string        `envconfig:"DEFAULT_PASSWORD" default:"P@ssw0rd"`
	LockTTL         time.Duration `envconfig:"LOCK_TTL" default:"60s"`
	LockWait        time.Duration `envconfig:"LOCK_WAIT" default:"30s"`
}

type ObservabilityConfig struct {
	MetricsPath    string  `envconfig:"METRICS_PATH" default:"/metrics"`
	OTLPEndpoint   string  `envconfig:"OTLP_ENDPOINT" default:"http://localhost:4318"`
	TracingEnabled bool    `envconfig:"TRACING_ENABLED" default:"true"`
	SampleRate     float64 `envconfig:"SAMPLE_RATE" default:"0.1"`
}

type CORSConfig struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate required fields
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	// Validate port
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", cfg.Server.Port)
	}

	// The signing key is loaded once at startup and shared read-only afterwards
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT secret must not be empty")
	}

	if cfg.JWT.TokenTTL <= 0 {
		return fmt.Errorf("invalid JWT token TTL: %s", cfg.JWT.TokenTTL)
	}

	// Validate sample rate
	if cfg.Observability.SampleRate < 0 || cfg.Observability.SampleRate > 1 {
		return fmt.Errorf("invalid tracing sample rate: %f", cfg.Observability.SampleRate)
	}

	return nil
}
