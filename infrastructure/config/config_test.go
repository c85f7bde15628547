package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var envKeys = []string{
	"CONFIG_FILE", "SERVER_ADDRESS", "METRICS_ADDRESS", "ENVIRONMENT", "DB_DRIVER", "DB_DSN",
	"AWS_REGION", "EVENT_BUS_NAME", "LOG_LEVEL", "JWT_SECRET", "JWT_ISSUER",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "ENABLE_METRICS", "ENABLE_TRACING", "ENABLE_CORS",
	"REGENERATE_RATE_PER_MINUTE", "REGENERATE_ROLE", "CORS_ALLOWED_ORIGINS", "AWS_LAMBDA_FUNCTION_NAME", "IS_LAMBDA",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 6, cfg.RegenerateRatePerMinute)
	assert.True(t, cfg.EnableCORS)
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.IsLambda)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
server_address: ":9000"
log_level: debug
db_driver: postgres
db_dsn: postgres://localhost/provenance
cors_allowed_origins: ["https://ops.example.com"]
regenerate_rate_per_minute: 2
regenerate_role: analyst
`)
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("ENABLE_CORS", "false")
	t.Setenv("REGENERATE_ROLE", "planner")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ServerAddress, "environment wins over file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, []string{"https://ops.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2, cfg.RegenerateRatePerMinute)
	assert.Equal(t, "planner", cfg.RegenerateRole)
	assert.False(t, cfg.EnableCORS)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"production without secret", map[string]string{"ENVIRONMENT": "production", "DB_DRIVER": "postgres", "DB_DSN": "postgres://x"}},
		{"production on sqlite", map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "s"}},
		{"non positive rate", map[string]string{"REGENERATE_RATE_PER_MINUTE": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}

	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_LambdaDetection(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "provenance-api")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsLambda)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zap.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zap.InfoLevel, ParseLevel("loud"))
}

func TestWatcher_ReloadsLogLevel(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	logger, level, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, zap.InfoLevel, level.Level())

	w, err := NewWatcher(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Stop()
	w.OnChange(ApplyLogLevel(level))

	writeFile(t, path, "log_level: debug\n")
	assert.Eventually(t, func() bool {
		return level.Level() == zap.DebugLevel
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "debug", w.Config().LogLevel)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	writeFile(t, path, "db_driver: oracle\n")
	time.Sleep(2 * debounceDelay)
	assert.Equal(t, "debug", w.Config().LogLevel, "invalid files are ignored")
}

func TestWatcher_ReloadRunsEveryCallback(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	w, err := NewWatcher(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Stop()

	var mu sync.Mutex
	seen := map[string]string{}
	for _, name := range []string{"first", "second"} {
		name := name
		w.OnChange(func(c *Config) {
			mu.Lock()
			defer mu.Unlock()
			seen[name] = c.LogLevel
		})
	}

	writeFile(t, path, "log_level: warn\n")
	w.reload()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]string{"first": "warn", "second": "warn"}, seen)
}

func TestNewWatcher_RequiresFile(t *testing.T) {
	_, err := NewWatcher(Defaults(), zaptest.NewLogger(t))
	assert.Error(t, err)
}
