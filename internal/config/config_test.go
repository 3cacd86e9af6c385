package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[storage]
driver = "memory"

[sweeper]
interval_seconds = 30

[policy]
max_hours_per_reservation = 6
allowed_start_time = "10:00"

[[tables]]
id = 1
name = "Table 1"
capacity = 6

[[tables]]
id = 2
name = "Table 2"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 30, cfg.Sweeper.IntervalSeconds)
	assert.Equal(t, 500, cfg.Sweeper.BatchSize)
	assert.Equal(t, 3, cfg.Scheduler.MaxWriteAttempts)

	policy, err := cfg.Policy.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, 6, policy.MaxHoursPerReservation)
	assert.Equal(t, types.TimeString("10:00"), policy.AllowedStartTime)
	assert.Equal(t, types.TimeString("22:00"), policy.AllowedEndTime)
	assert.Equal(t, 1, policy.MaxReservationsPerUserPerDay)

	tables := cfg.DomainTables()
	require.Len(t, tables, 2)
	assert.Equal(t, 6, tables[0].Capacity)
	assert.Equal(t, 0, tables[1].Capacity)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.HTTPPort)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Contains(t, cfg.Database.DSN(), "password=secret")
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "debug", cfg.Logs.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "[storage]\ndriver = \"sqlite\""},
		{"zero interval", "[sweeper]\ninterval_seconds = 0"},
		{"bad port", "[server]\nhttp_port = -1"},
		{"inverted policy window", "[policy]\nallowed_start_time = \"23:00\""},
		{"negative capacity", "[[tables]]\nid = 1\nname = \"x\"\ncapacity = -2"},
		{"broken toml", "[server"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_InvalidEnvPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "d"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", c.DSN())
}
