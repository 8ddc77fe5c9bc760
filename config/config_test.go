package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeEnvKey(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"dbName":  "pushgate",
		},
		"push": map[string]any{
			"challengeTTL": "2m",
		},
	}

	tests := []struct {
		raw  string
		want string
	}{
		{"POSTGRES_SSLMODE", "postgres.sslMode"},
		{"POSTGRES_DBNAME", "postgres.dbName"},
		{"POSTGRES_HOST", "postgres.host"},
		{"PUSH_CHALLENGETTL", "push.challengeTTL"},
		{"HTTP_PORT", "http.port"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, canonicalizeEnvKey(tt.raw, existing), tt.raw)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &PostgresConfig{
		ConnectionConfig: ConnectionConfig{
			Host:     "localhost",
			Port:     "5432",
			UserName: "pushgate",
			Password: "secret",
		},
		DBName:   "pushgate",
		SSLMode:  "require",
		Timezone: "UTC",
	}

	dsn := cfg.DSN(cfg.ConnectionConfig)
	assert.Equal(t, "host=localhost port=5432 user=pushgate password=secret dbname=pushgate sslmode=require TimeZone=UTC", dsn)
}

func TestPostgresDSN_Defaults(t *testing.T) {
	cfg := &PostgresConfig{
		ConnectionConfig: ConnectionConfig{Host: "db", Port: "5432", UserName: "u", Password: "p"},
		DBName:           "pushgate",
	}

	dsn := cfg.DSN(ConnectionConfig{Host: "replica", Port: "5433", UserName: "u", Password: "p"})
	assert.Contains(t, dsn, "host=replica")
	assert.Contains(t, dsn, "sslmode=disable")
}
