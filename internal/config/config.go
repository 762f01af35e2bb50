// Package config loads the service configuration from command-line flags and
// environment variables (optionally via a .env file). The resulting Config is
// immutable and passed to components at construction time.
package config

import (
	"flag"
	"log"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// EnvProduction is the environment name in which insecure fallbacks
// (such as the default JWT secret) are refused.
const EnvProduction = "production"

// Config holds every runtime setting of the service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	ShortURLBase        string        `env:"BASE_URL" validate:"url"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR"`
	DBFileName          string        `env:"FILE_STORAGE_PATH"`
	JWTSigningSecret    string        `env:"JWT_SECRET"`
	TokenTTL            time.Duration `env:"TOKEN_TTL"`
	TrustedSubnet       string        `env:"TRUSTED_SUBNET"`
	Environment         string        `env:"APP_ENV" validate:"environment"`
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func validateEnvironment(fieldLevel validator.FieldLevel) bool {
	allowedEnvironments := map[string]bool{
		"development": true,
		"staging":     true,
		EnvProduction: true,
	}

	return allowedEnvironments[fieldLevel.Field().String()]
}

func (c *Config) validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	if err := validate.RegisterValidation("environment", validateEnvironment); err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption configures the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag parsing.
// Tests use it to avoid clashing with the `go test` flag set.
func WithDisableFlagsParsing(disable bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disable
	}
}

// New builds the configuration from defaults, flags and environment
// variables, in increasing order of precedence, and validates the result.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	cfg := &Config{
		RunAddr:             ":8080",
		ShortURLBase:        "http://localhost:8080",
		LogLevel:            "info",
		DatabaseDSN:         "",
		DBConnectionTimeout: 10 * time.Second,
		MigrationsDir:       "migrations",
		DBFileName:          "",
		JWTSigningSecret:    "",
		TokenTTL:            24 * time.Hour,
		TrustedSubnet:       "",
		Environment:         "development",
	}

	if !options.disableFlagsParsing {
		flag.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "address and port to run server")
		flag.StringVar(&cfg.ShortURLBase, "b", cfg.ShortURLBase, "base address of the resulting shortened URL")
		flag.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "logger level")
		flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database connection string")
		flag.StringVar(&cfg.DBFileName, "f", cfg.DBFileName, "JSON file name with database")
		flag.StringVar(&cfg.TrustedSubnet, "t", cfg.TrustedSubnet, "CIDR of the subnet allowed to list all links")
		flag.Parse()
	}

	var fromEnv Config
	if err := env.Parse(&fromEnv); err != nil {
		return nil, err
	}

	if fromEnv.RunAddr != "" {
		cfg.RunAddr = fromEnv.RunAddr
	}
	if fromEnv.ShortURLBase != "" {
		cfg.ShortURLBase = fromEnv.ShortURLBase
	}
	if fromEnv.LogLevel != "" {
		cfg.LogLevel = fromEnv.LogLevel
	}
	if fromEnv.DatabaseDSN != "" {
		cfg.DatabaseDSN = fromEnv.DatabaseDSN
	}
	if fromEnv.DBConnectionTimeout != 0 {
		cfg.DBConnectionTimeout = fromEnv.DBConnectionTimeout
	}
	if fromEnv.MigrationsDir != "" {
		cfg.MigrationsDir = fromEnv.MigrationsDir
	}
	if fromEnv.DBFileName != "" {
		cfg.DBFileName = fromEnv.DBFileName
	}
	if fromEnv.JWTSigningSecret != "" {
		cfg.JWTSigningSecret = fromEnv.JWTSigningSecret
	}
	if fromEnv.TokenTTL != 0 {
		cfg.TokenTTL = fromEnv.TokenTTL
	}
	if fromEnv.TrustedSubnet != "" {
		cfg.TrustedSubnet = fromEnv.TrustedSubnet
	}
	if fromEnv.Environment != "" {
		cfg.Environment = fromEnv.Environment
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
