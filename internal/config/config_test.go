package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigToml = `
[development]
port = 9100
log_level = "debug"
data_dir = "./data"
rollover_hour = 18

[production]
host = "0.0.0.0"
port = 80
time_zone = "Europe/Berlin"
submit_key_hash = "$2a$04$from-file"
redis_host = "redis"
redis_port = "6379"
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Development(t *testing.T) {
	path := writeTestConfig(t, testConfigToml)

	cfg, err := Load("dev", path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 18, cfg.RolloverHour)
	assert.Equal(t, 4, cfg.ChartStartHour)
	assert.Equal(t, 3, cfg.PolynomialDegree)
	assert.Equal(t, "America/Chicago", cfg.TimeZone)
	assert.Equal(t, filepath.Join("data", "daily_data.csv"), cfg.DailyPath())
	assert.Equal(t, filepath.Join("data", "monthly_data.csv"), cfg.MonthlyPath())
	assert.Equal(t, filepath.Join("data", "hours_data.csv"), cfg.HoursPath())
	assert.Empty(t, cfg.RedisHost)
}

func TestLoad_Production_EnvOverride(t *testing.T) {
	path := writeTestConfig(t, testConfigToml)
	t.Setenv("DAILYSCORE_SUBMIT_KEY_HASH", "$2a$04$from-env")

	cfg, err := Load("production", path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 80, cfg.Port)
	assert.Equal(t, "$2a$04$from-env", cfg.SubmitKeyHash)
	assert.Equal(t, "redis", cfg.RedisHost)
	assert.Equal(t, 17, cfg.RolloverHour)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("dev", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := writeTestConfig(t, testConfigToml)
	_, err = Load("staging", path)
	assert.EqualError(t, err, "unknown env: staging")

	path = writeTestConfig(t, "[development]\nport = 1\n")
	_, err = Load("prod", path)
	assert.Error(t, err)

	path = writeTestConfig(t, "[production]\nport = 1\n")
	_, err = Load("prod", path)
	assert.EqualError(t, err, "submit key hash must be set in production")

	path = writeTestConfig(t, "[development]\nrollover_hour = 24\n")
	_, err = Load("dev", path)
	assert.Error(t, err)

	path = writeTestConfig(t, "[development]\ntime_zone = \"Mars/Olympus\"\n")
	_, err = Load("dev", path)
	assert.Error(t, err)
}

func TestLoad_ChartStartMidnight(t *testing.T) {
	path := writeTestConfig(t, "[development]\nchart_start_hour = 0\n\n[production]\nchart_start_hour = 0\nsubmit_key_hash = \"x\"\n")

	cfg, err := Load("dev", path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.ChartStartHour)

	cfg, err = Load("prod", path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.ChartStartHour)

	path = writeTestConfig(t, "[development]\nport = 1\n")
	cfg, err = Load("development", path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.ChartStartHour)
}
