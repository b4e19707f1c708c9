package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
http:
  address: ":8080"
database:
  host: localhost
  port: 5432
  user: surety
  password: secret
  name: surety
  ssl_mode: disable
kafka:
  brokers: ["localhost:9092"]
  events_topic: surety.events
  notifications_topic: surety.notifications
  group_id: surety-worker
surety:
  owner: "0xowner"
  first_issuer: "0xairline1"
  min_funding: "10"
  payout_multiplier: "1.5"
  oracle_quorum: 3
  idempotency_ttl_seconds: 600
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "host=localhost port=5432 user=surety password=secret dbname=surety sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "surety.notifications", cfg.Kafka.NotificationsTopic)
	assert.Equal(t, float64(600), cfg.Surety.IdempotencyWindow().Seconds())

	params, err := cfg.Surety.Params()
	require.NoError(t, err)
	assert.Equal(t, "0xowner", params.Owner.String())
	assert.Equal(t, "1.5", params.PayoutMultiplier.String())
	assert.Equal(t, 4, params.AdmissionThreshold)
	assert.Equal(t, uint8(10), params.IndexRange)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "http: [unclosed"))
	assert.Error(t, err)
}

func TestSuretyConfig_Params_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		cfg  SuretyConfig
	}{
		{name: "missing owner", cfg: SuretyConfig{FirstIssuer: "0xa"}},
		{name: "bad decimal", cfg: SuretyConfig{Owner: "0xo", FirstIssuer: "0xa", PremiumCap: "one"}},
		{name: "quorum too small", cfg: SuretyConfig{Owner: "0xo", FirstIssuer: "0xa", OracleQuorum: 2}},
		{name: "index range overflow", cfg: SuretyConfig{Owner: "0xo", FirstIssuer: "0xa", OracleIndexRange: 300}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Params()
			assert.Error(t, err)
		})
	}
}
