package config

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{b}, 32))
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsAndEnvOverlay(t *testing.T) {
	path := writeConfig(t, `
security:
  hash_salt: salt
  cookie_secret: secret
rateLimits:
  scopes:
    share_raw: {limit: 5, window_seconds: 10, fail_closed: true}
crypto:
  master_keys:
    - id: k1
      key: `+testKey(1)+`
      active: true
`)
	t.Setenv("TICKET_TTL_SECONDS", "45")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 45, cfg.Tickets.TTLSeconds)
	assert.Equal(t, "postgres", cfg.RateLimits.Store)
	assert.Equal(t, "CF-IPCountry", cfg.Server.CountryHeader)
	assert.Equal(t, RateLimitRule{Limit: 5, WindowSeconds: 10, FailClosed: true}, cfg.RateLimits.Rule(ScopeShareRaw))
	assert.False(t, cfg.RateLimits.Rule(ScopeScanTrigger).FailClosed)
	require.Len(t, cfg.Crypto.MasterKeys, 1)
	assert.True(t, cfg.Crypto.MasterKeys[0].Active)
}

func TestLoadConfig_MasterKeysFromEnvironment(t *testing.T) {
	path := writeConfig(t, "security: {hash_salt: s, cookie_secret: c}\n")
	t.Setenv("MASTER_KEYS", "k2:"+testKey(2)+":active;k1:"+testKey(1)+":revoked")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Crypto.MasterKeys, 2)
	assert.Equal(t, "k2", cfg.Crypto.MasterKeys[0].ID)
	assert.True(t, cfg.Crypto.MasterKeys[1].Revoked)
}

func TestValidate(t *testing.T) {
	valid := func() *AppConfig {
		cfg := &AppConfig{Security: SecurityConfig{HashSalt: "s", CookieSecret: "c"}}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(cfg *AppConfig)
	}{
		{name: "retry base above max", mutate: func(cfg *AppConfig) { cfg.Scan.RetryBaseMinutes = 90 }},
		{name: "negative ticket ttl", mutate: func(cfg *AppConfig) { cfg.Tickets.TTLSeconds = -1 }},
		{name: "unknown rate store", mutate: func(cfg *AppConfig) { cfg.RateLimits.Store = "memcached" }},
		{name: "redis store without redis", mutate: func(cfg *AppConfig) { cfg.RateLimits.Store = "redis" }},
		{name: "unknown s3 driver", mutate: func(cfg *AppConfig) { cfg.S3Config.Driver = "gcs" }},
		{name: "missing cookie secret", mutate: func(cfg *AppConfig) { cfg.Security.CookieSecret = "" }},
		{name: "zero window", mutate: func(cfg *AppConfig) {
			cfg.RateLimits.Scopes[ScopeShareRaw] = RateLimitRule{Limit: 1}
		}},
		{name: "two active keys", mutate: func(cfg *AppConfig) {
			cfg.Crypto.MasterKeys = []MasterKeyConfig{
				{ID: "a", Key: testKey(1), Active: true},
				{ID: "b", Key: testKey(2), Active: true},
			}
		}},
		{name: "active and revoked", mutate: func(cfg *AppConfig) {
			cfg.Crypto.MasterKeys = []MasterKeyConfig{{ID: "a", Key: testKey(1), Active: true, Revoked: true}}
		}},
		{name: "short key", mutate: func(cfg *AppConfig) {
			cfg.Crypto.MasterKeys = []MasterKeyConfig{{ID: "a", Key: base64.StdEncoding.EncodeToString([]byte("short"))}}
		}},
		{name: "duplicate id", mutate: func(cfg *AppConfig) {
			cfg.Crypto.MasterKeys = []MasterKeyConfig{{ID: "a", Key: testKey(1)}, {ID: "a", Key: testKey(2)}}
		}},
		{name: "bad key flag", mutate: func(cfg *AppConfig) { cfg.Crypto.MasterKeysSpec = "a:" + testKey(1) + ":primary" }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRunMigrations(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	database := &Database{DB: sqlx.NewDb(sqlDB, "postgres")}

	original := gooseUpContext
	defer func() { gooseUpContext = original }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		assert.Same(t, sqlDB, db)
		return nil
	}
	require.NoError(t, database.RunMigrations(context.Background()))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("dirty version")
	}
	assert.Error(t, database.RunMigrations(context.Background()))
}
