package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromAppliesDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"JWT_SECRET": "secret"})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Address())
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenTTL.Duration())
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "https://swapi.dev/api", cfg.Sync.BaseMoviesURL)
	assert.Equal(t, "@every 2h", cfg.Sync.Schedule)
	assert.Equal(t, "/metrics", cfg.Metrics.PrometheusPath)
	assert.False(t, cfg.MinIO.Enabled)
	assert.Equal(t, uint64(3), cfg.Sync.MaxRetries)
	assert.Zero(t, cfg.Postgres.MaxConns)
}

func TestLoadFromRequiresSecret(t *testing.T) {
	_, err := LoadFrom(map[string]string{})
	require.Error(t, err)

	_, err = LoadFrom(map[string]string{"JWT_SECRET": ""})
	require.Error(t, err)
}

func TestLoadFromParsesExpiration(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"JWT_SECRET":          "secret",
		"JWT_EXPIRATION_TIME": "2d",
		"BCRYPT_COST":         "99",
		"BASE_MOVIES_URL":     "http://films.local/api/",
	})
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.Auth.AccessTokenTTL.Duration())
	assert.Equal(t, 10, cfg.Auth.BcryptCost, "out of range cost falls back")
	assert.Equal(t, "http://films.local/api", cfg.Sync.BaseMoviesURL)
}

func TestLoadFromRejectsBadExpiration(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"JWT_SECRET":          "secret",
		"JWT_EXPIRATION_TIME": "forever",
	})
	require.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "movies", SSLMode: "DISABLE"}
	assert.Equal(t, "postgres://u:p@db:5432/movies?sslmode=disable", p.DSN())

	p.URL = "postgres://other"
	assert.Equal(t, "postgres://other", p.DSN())
}

func TestParseTTL(t *testing.T) {
	cases := map[string]time.Duration{
		"":         DefaultAccessTokenTTL,
		"3600":     time.Hour,
		"1d":       24 * time.Hour,
		"2 days":   48 * time.Hour,
		"90m":      90 * time.Minute,
		"1.5h":     90 * time.Minute,
		"500ms":    500 * time.Millisecond,
		"1w":       7 * 24 * time.Hour,
		"10 Hours": 10 * time.Hour,
	}
	for in, want := range cases {
		got, err := ParseTTL(in)
		if err != nil {
			t.Fatalf("ParseTTL(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseTTL(%q) = %v, want %v", in, got, want)
		}
	}

	for _, bad := range []string{"abc", "-1d", "0", "1fortnight", "d1"} {
		if _, err := ParseTTL(bad); err == nil {
			t.Fatalf("ParseTTL(%q) expected error", bad)
		}
	}
}
