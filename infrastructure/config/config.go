package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress  string `yaml:"server_address"`
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`

	// Storage
	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`

	// AWS configuration
	AWSRegion    string `yaml:"aws_region"`
	EventBusName string `yaml:"event_bus_name"`

	// Lambda configuration
	IsLambda           bool   `yaml:"-"`
	LambdaFunctionName string `yaml:"-"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`

	CORSAllowedOrigins      []string `yaml:"cors_allowed_origins"`
	RegenerateRatePerMinute int      `yaml:"regenerate_rate_per_minute"`
	RegenerateRole          string   `yaml:"regenerate_role"`
	OTLPEndpoint            string   `yaml:"otlp_endpoint"`

	// ConfigFile is the YAML file the configuration was layered over, if any.
	ConfigFile string `yaml:"-"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		ServerAddress:           ":8080",
		MetricsAddress:          ":9090",
		Environment:             "development",
		DBDriver:                DriverSQLite,
		DBDSN:                   "file:provenance.db?_pragma=foreign_keys(1)",
		AWSRegion:               "us-west-2",
		LogLevel:                "info",
		JWTIssuer:               "provenance-backend",
		EnableCORS:              true,
		CORSAllowedOrigins:      []string{"http://localhost:3000"},
		RegenerateRatePerMinute: 6,
		OTLPEndpoint:            "localhost:4317",
	}
}

// LoadConfig loads configuration from the YAML file named by CONFIG_FILE,
// if set, and then from environment variables. Environment variables win.
func LoadConfig() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load layers the YAML file at path (skipped when empty) and the
// environment over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}
	cfg.loadEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnvironment() {
	setString(&c.ServerAddress, "SERVER_ADDRESS")
	setString(&c.MetricsAddress, "METRICS_ADDRESS")
	setString(&c.Environment, "ENVIRONMENT")
	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.DBDSN, "DB_DSN")
	setString(&c.AWSRegion, "AWS_REGION")
	setString(&c.EventBusName, "EVENT_BUS_NAME")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.JWTIssuer, "JWT_ISSUER")
	setString(&c.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&c.EnableMetrics, "ENABLE_METRICS")
	setBool(&c.EnableTracing, "ENABLE_TRACING")
	setBool(&c.EnableCORS, "ENABLE_CORS")
	setInt(&c.RegenerateRatePerMinute, "REGENERATE_RATE_PER_MINUTE")
	setString(&c.RegenerateRole, "REGENERATE_ROLE")
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORSAllowedOrigins = splitList(origins)
	}

	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", "")
	c.IsLambda = getEnvBool("IS_LAMBDA", c.LambdaFunctionName != "")
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.RegenerateRatePerMinute <= 0 {
		return fmt.Errorf("REGENERATE_RATE_PER_MINUTE must be positive")
	}
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DBDriver == DriverSQLite {
			return fmt.Errorf("sqlite is not supported in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AuthEnabled reports whether bearer tokens are required on the API
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func setString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setBool(target *bool, key string) {
	if os.Getenv(key) != "" {
		*target = getEnvBool(key, *target)
	}
}

func setInt(target *int, key string) {
	*target = getEnvInt(key, *target)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
