package config

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "4000")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()

	assert.Equal(t, "4000", cfg.ServerPort)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.True(t, cfg.Simulation.StrictGuard())
	assert.Equal(t, 25.0, cfg.Simulation.MinimumFare)
	assert.Equal(t, 50.0, cfg.Simulation.HourlyRate)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpirationHours)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OCCUPANCY_GUARD", "Permissive")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("HISTORY_LIMIT", "not-a-number")
	t.Setenv("INFLUXDB_URL", "http://localhost:8086")
	t.Setenv("INFLUXDB_TOKEN", "token")
	t.Setenv("INFLUXDB_REPORT_INTERVAL", "30s")

	cfg := Load()

	assert.False(t, cfg.Simulation.StrictGuard())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 1000, cfg.Simulation.HistoryLimit)
	assert.True(t, cfg.InfluxDB.Enabled())
	assert.Equal(t, 30*time.Second, cfg.InfluxDB.ReportInterval)
	assert.Equal(t, 24*time.Hour, cfg.Simulation.EventLogRetention)
}

func TestUnknownGuardFallsBackToStrictWithWarning(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	t.Setenv("OCCUPANCY_GUARD", "permisive")
	cfg := Load()

	assert.Equal(t, GuardStrict, cfg.Simulation.OccupancyGuard)
	assert.True(t, cfg.Simulation.StrictGuard())
	assert.Contains(t, buf.String(), "unknown OCCUPANCY_GUARD 'permisive'")
}
