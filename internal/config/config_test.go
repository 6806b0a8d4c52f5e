package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.LeaderboardWindow)
	assert.Equal(t, 5, cfg.LeaderboardLimit)
	assert.Equal(t, 5*time.Minute, cfg.LeaderboardBucketGrace)
	assert.Equal(t, "5 * * * *", cfg.LeaderboardWarmCron)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Memory ")
	t.Setenv("LEADERBOARD_WINDOW", "2h")
	t.Setenv("LEADERBOARD_LIMIT", "10")
	t.Setenv("ARCHIVE_BUCKET", "ledger-archive")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 2*time.Hour, cfg.LeaderboardWindow)
	assert.Equal(t, 10, cfg.LeaderboardLimit)
	assert.True(t, cfg.ArchiveEnabled())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown backend", "STORE_BACKEND", "mongo"},
		{"zero limit", "LEADERBOARD_LIMIT", "0"},
		{"negative window", "LEADERBOARD_WINDOW", "-1h"},
		{"bad duration", "REQUEST_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: 5433, DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=require timezone=UTC", cfg.DatabaseDSN())
}
