package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeboard/internal/domain/transactions"
)

var managedKeys = []string{
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "STORAGE", "MONGO_URI", "MONGO_DB",
	"KAFKA_BROKERS", "KAFKA_TOPIC_PREFIX", "IDEMP_TTL", "OUTBOX_POLL_INTERVAL",
	"RETRY_BACKOFF", "JWT_SECRET", "RESERVATION_LOCK_WAIT", "TRANSACTION_TRANSITIONS",
	"DEFAULT_CURRENCY", "S3_ENDPOINT", "S3_USE_SSL",
}

// clearEnv blanks every key Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		t.Setenv(k, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 2*time.Second, cfg.ReservationLockWait)
	assert.Equal(t, transactions.PolicyPermissive, cfg.TransitionPolicy)
	assert.Equal(t, "EUR", cfg.DefaultCurrency)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("RESERVATION_LOCK_WAIT", "750ms")
	t.Setenv("TRANSACTION_TRANSITIONS", "strict")
	t.Setenv("S3_USE_SSL", "yes")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, StorageMongo, cfg.Storage)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 750*time.Millisecond, cfg.ReservationLockWait)
	assert.Equal(t, transactions.PolicyStrict, cfg.TransitionPolicy)
	assert.True(t, cfg.S3UseSSL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"mongo without uri":  {"STORAGE": "mongo"},
		"unknown storage":    {"STORAGE": "redis"},
		"bad lock wait":      {"RESERVATION_LOCK_WAIT": "soon"},
		"zero lock wait":     {"RESERVATION_LOCK_WAIT": "0s"},
		"bad policy":         {"TRANSACTION_TRANSITIONS": "loose"},
		"bad bool":           {"S3_USE_SSL": "maybe"},
		"secret outside dev": {"APP_ENV": "prod"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("HTTP_ADDR")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:9090\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
}
