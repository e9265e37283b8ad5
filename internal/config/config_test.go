package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// load sets APP_ENV=dev plus the given overrides and loads the config.
func load(t *testing.T, env map[string]string) (Config, error) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	for key, value := range env {
		t.Setenv(key, value)
	}
	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, nil)
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "simulated", cfg.MarketProvider)
	assert.True(t, cfg.MarketFallbackEnabled)
	assert.Equal(t, 6, cfg.DraftDefaultRounds)
	assert.Equal(t, 60, cfg.DraftDefaultPickSeconds)
	assert.Equal(t, 10, cfg.DraftDefaultCountdownSeconds)
	assert.Equal(t, 5*time.Second, cfg.DraftEnforcerInterval)
	assert.Equal(t, 8, cfg.DraftEnforcerWorkers)
	assert.Equal(t, time.Hour, cfg.WeeklyJobInterval)
	assert.Equal(t, 30*time.Second, cfg.AnubisCacheTTL)
	assert.False(t, cfg.QStashEnabled)

	assert.True(t, cfg.KrakenCircuit.Enabled)
	assert.Equal(t, 5, cfg.KrakenCircuit.FailureThreshold)
	assert.Equal(t, 15*time.Second, cfg.KrakenCircuit.OpenTimeout)
}

func TestLoad_SwaggerDefaultFollowsEnv(t *testing.T) {
	for env, want := range map[string]bool{EnvDev: true, EnvStage: true, EnvProd: false} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			t.Setenv("SWAGGER_ENABLED", "")
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, want, cfg.SwaggerEnabled)
		})
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown app env", env: map[string]string{"APP_ENV": "qa"}},
		{name: "storage driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "cache ttl", env: map[string]string{"CACHE_TTL": "bad"}},
		{name: "negative cache ttl", env: map[string]string{"CACHE_TTL": "-1s"}},
		{name: "prepared binary flag", env: map[string]string{"DB_DISABLE_PREPARED_BINARY_RESULT": "not-bool"}},
		{name: "enforcer workers", env: map[string]string{"DRAFT_ENFORCER_WORKERS": "0"}},
		{name: "countdown", env: map[string]string{"DRAFT_DEFAULT_COUNTDOWN_SECONDS": "-5"}},
		{name: "market provider", env: map[string]string{"MARKET_PROVIDER": "bloomberg"}},
		{name: "sim model", env: map[string]string{"SIM_MODEL": "garch"}},
		{name: "sim factor vol", env: map[string]string{"SIM_FACTOR_VOL": "0"}},
		{name: "kraken retries", env: map[string]string{"KRAKEN_MAX_RETRIES": "-1"}},
		{name: "kraken circuit", env: map[string]string{"KRAKEN_CIRCUIT_FAILURE_COUNT": "0"}},
		{name: "anubis cache ttl", env: map[string]string{"ANUBIS_CACHE_TTL": "-1s"}},
		{name: "nats max age", env: map[string]string{"NATS_MAX_AGE": "week"}},
		{name: "uptrace without dsn", env: map[string]string{
			"UPTRACE_ENABLED": "true", "UPTRACE_DSN": "", "OTEL_EXPORTER_OTLP_HEADERS": "",
		}},
		{name: "pyroscope without server", env: map[string]string{
			"PYROSCOPE_ENABLED": "true", "PYROSCOPE_SERVER_ADDRESS": "",
		}},
		{name: "qstash without credentials", env: map[string]string{
			"QSTASH_ENABLED": "true", "QSTASH_TOKEN": "", "QSTASH_TARGET_BASE_URL": "", "INTERNAL_JOB_TOKEN": "",
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, tc.env)
			require.Error(t, err)
		})
	}
}

func TestLoad_Telemetry(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"APP_SERVICE_NAME":           "asset-draft-api-test",
		"UPTRACE_ENABLED":            "true",
		"UPTRACE_DSN":                "",
		"OTEL_EXPORTER_OTLP_HEADERS": `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`,
		"PYROSCOPE_ENABLED":          "true",
		"PYROSCOPE_SERVER_ADDRESS":   "http://localhost:4040",
		"PYROSCOPE_APP_NAME":         "",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://token@api.uptrace.dev?grpc=4317", cfg.UptraceDSN)
	assert.Equal(t, "asset-draft-api-test", cfg.PyroscopeAppName)
}

func TestLoad_ListsAndToggles(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"CORS_ALLOWED_ORIGINS": " https://a.example.com, http://localhost:5173 ",
		"ANUBIS_CACHE_TTL":     "0s",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example.com", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Zero(t, cfg.AnubisCacheTTL)
}

func TestLoad_QStashEnabled(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"QSTASH_ENABLED":         "true",
		"QSTASH_TOKEN":           "qstash-token",
		"QSTASH_TARGET_BASE_URL": "https://draft.example.com",
		"INTERNAL_JOB_TOKEN":     "internal-job-token",
		"QSTASH_RETRIES":         "2",
		"QSTASH_CIRCUIT_ENABLED": "false",
	})
	require.NoError(t, err)

	assert.True(t, cfg.QStashEnabled)
	assert.Equal(t, 2, cfg.QStashRetries)
	assert.False(t, cfg.QStashCircuit.Enabled)
	assert.Equal(t, "internal-job-token", cfg.InternalJobToken)
}

func TestLoad_MarketAndSimulation(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"MARKET_PROVIDER":         " Kraken ",
		"MARKET_FALLBACK_ENABLED": "false",
		"SIM_MODEL":               "NASDAQ",
		"SIM_DRIFT_BPS":           "-1.5",
		"SIM_FACTOR_VOL":          "0.01",
		"KRAKEN_TIMEOUT":          "2s",
	})
	require.NoError(t, err)

	assert.Equal(t, "kraken", cfg.MarketProvider)
	assert.False(t, cfg.MarketFallbackEnabled)
	assert.Equal(t, "nasdaq", cfg.SimModel)
	assert.InDelta(t, -1.5, cfg.SimDriftBps, 1e-9)
	assert.InDelta(t, 0.01, cfg.SimFactorVol, 1e-9)
	assert.Equal(t, 2*time.Second, cfg.KrakenTimeout)
}
