package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, EngineSQLite, cfg.Database.Engine)
	require.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	require.Equal(t, 6, cfg.Auth.MinPasswordLength)
	require.Equal(t, "ssid", cfg.Cookie.Name)
	require.Equal(t, "/", cfg.Cookie.Path)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
database:
  engine: postgres
  url: postgres://auth@localhost/auth
  maxConns: 8
auth:
  sessionTtl: 1h
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("AUTH_SESSION_TTL", "2h")
	t.Setenv("AUTH_DATABASE_MIGRATE", "false")
	t.Setenv("AUTH_ARGON2_ITERATIONS", "3")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, EnginePostgres, cfg.Database.Engine)
	require.Equal(t, int32(8), cfg.Database.MaxConns)
	require.False(t, cfg.Database.Migrate)
	require.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	require.Equal(t, uint32(3), cfg.Auth.Argon2.Iterations)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.HTTP.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown engine", func(c *Config) { c.Database.Engine = "mysql" }},
		{"empty url", func(c *Config) { c.Database.URL = " " }},
		{"min above max", func(c *Config) { c.Database.MinConns = 9 }},
		{"zero ttl", func(c *Config) { c.Auth.SessionTTL = 0 }},
		{"short salt", func(c *Config) { c.Auth.Argon2.SaltLength = 4 }},
		{"relative cookie path", func(c *Config) { c.Cookie.Path = "auth" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, defaultConfig().Validate())
}
