package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalYAML = `
environment: test
coingecko:
  instruments: [bitcoin, ethereum]
warehouse:
  dsn: "file::memory:"
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "clickhouse", cfg.Ingest.Backend)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, "usd", cfg.CoinGecko.VSCurrency)
	assert.Equal(t, 365, cfg.CoinGecko.HistoryDays)
	assert.Equal(t, time.Hour, cfg.CoinGecko.PollInterval)
	assert.Equal(t, "postgres", cfg.Warehouse.Driver)
	assert.Equal(t, 50, cfg.Training.MinSamples)
	assert.InDelta(t, 0.2, cfg.Training.TestFraction, 1e-9)
	assert.Equal(t, 5, cfg.Training.CVFolds)
	assert.Equal(t, int64(42), cfg.Training.Seed)
}

func TestLoad_ExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
environment: production
server:
  port: 9000
ingest:
  backend: kafka
kafka:
  brokers: [kafka-1:9092, kafka-2:9092]
  topic: prices
coingecko:
  instruments: [bitcoin]
  history_days: 90
  poll_interval: 30m
warehouse:
  driver: sqlite
  dsn: coinsight.db
training:
  retrain_every: 24h
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "kafka", cfg.Ingest.Backend)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90, cfg.CoinGecko.HistoryDays)
	assert.Equal(t, 30*time.Minute, cfg.CoinGecko.PollInterval)
	assert.Equal(t, "sqlite", cfg.Warehouse.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Training.RetrainEvery)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing environment",
			yaml: `
coingecko:
  instruments: [bitcoin]
warehouse:
  dsn: x
`,
			want: "environment",
		},
		{
			name: "bad backend",
			yaml: `
environment: test
ingest:
  backend: rabbitmq
coingecko:
  instruments: [bitcoin]
warehouse:
  dsn: x
`,
			want: "ingest.backend",
		},
		{
			name: "no instruments",
			yaml: `
environment: test
warehouse:
  dsn: x
`,
			want: "instruments",
		},
		{
			name: "kafka backend without brokers",
			yaml: `
environment: test
ingest:
  backend: kafka
coingecko:
  instruments: [bitcoin]
warehouse:
  dsn: x
`,
			want: "kafka.brokers",
		},
		{
			name: "missing warehouse dsn",
			yaml: `
environment: test
coingecko:
  instruments: [bitcoin]
`,
			want: "warehouse.dsn",
		},
		{
			name: "bad test fraction",
			yaml: `
environment: test
coingecko:
  instruments: [bitcoin]
warehouse:
  dsn: x
training:
  test_fraction: 1.5
`,
			want: "test_fraction",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	t.Setenv("INGEST_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092,broker-b:9092")
	t.Setenv("INSTRUMENTS", "bitcoin,solana")
	t.Setenv("WAREHOUSE_DSN", "env-dsn")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "kafka", cfg.Ingest.Backend)
	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"bitcoin", "solana"}, cfg.CoinGecko.Instruments)
	assert.Equal(t, "env-dsn", cfg.Warehouse.DSN)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}
