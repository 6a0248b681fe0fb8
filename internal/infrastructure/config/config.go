package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	ResumeBackendLocal = "local"
	ResumeBackendS3    = "s3"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	// PhoneCountryCode is prefixed to the 10 submitted phone digits.
	PhoneCountryCode string `env:"PHONE_COUNTRY_CODE, default=+91"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Resume ResumeConfig
	S3     S3Config
	Audit  AuditConfig
	Login  LoginConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=recruit_portal"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=true"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type ResumeConfig struct {
	Backend  string `env:"RESUME_BACKEND,   default=local"`
	Dir      string `env:"RESUME_DIR,       default=uploads/resumes"`
	MaxBytes int64  `env:"RESUME_MAX_BYTES, default=5242880"`
}

type S3Config struct {
	Bucket          string `env:"S3_BUCKET"`
	Region          string `env:"S3_REGION,  default=us-east-1"`
	Endpoint        string `env:"S3_ENDPOINT"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	Prefix          string `env:"S3_PREFIX,  default=resumes/"`
}

type AuditConfig struct {
	Workers   int    `env:"AUDIT_WORKERS,    default=2"`
	Buffer    int    `env:"AUDIT_BUFFER,     default=512"`
	AMQPURL   string `env:"AUDIT_AMQP_URL"`
	AMQPQueue string `env:"AUDIT_AMQP_QUEUE, default=audit_events"`
}

type LoginConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Window      time.Duration `env:"LOGIN_WINDOW,       default=60s"`
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads an optional .env file, then configuration from environment
// variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("config: JWT_SECRET is required in production")
		}
		c.JWTSecret = "dev-secret-change-me"
	}
	switch c.Resume.Backend {
	case ResumeBackendLocal:
	case ResumeBackendS3:
		if c.S3.Bucket == "" {
			return errors.New("config: S3_BUCKET is required when RESUME_BACKEND=s3")
		}
	default:
		return fmt.Errorf("config: unknown RESUME_BACKEND %q", c.Resume.Backend)
	}
	if c.Resume.MaxBytes <= 0 {
		return errors.New("config: RESUME_MAX_BYTES must be positive")
	}
	if c.Login.MaxAttempts <= 0 || c.Login.Window <= 0 {
		return errors.New("config: LOGIN_MAX_ATTEMPTS and LOGIN_WINDOW must be positive")
	}
	return nil
}
