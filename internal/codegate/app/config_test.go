package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/codegate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CODEGATE_CONFIG_FILE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, jwtx.StandardSessionTTL, cfg.TTL())
	require.Equal(t, "codegate", cfg.AppTag)
	require.Equal(t, "sqlite", cfg.Store)
	require.Equal(t, 24*time.Hour, cfg.Retention)
	require.False(t, cfg.CodeAllowOverrides)
	require.Empty(t, cfg.TrustedProxies)

	format, err := cfg.CodeFormat()
	require.NoError(t, err)
	require.Equal(t, 6, format.Length())
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codegate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profile: extended
retention: 2h
app_tag: arcade
code_alphabet: unambiguous
code_length: 8
store: redis
redis_addr: localhost:6379
port: 9000
`), 0o600))

	t.Setenv("CODEGATE_CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("CODEGATE_CODE_ALLOW_OVERRIDES", "true")
	t.Setenv("CODEGATE_TRUSTED_PROXIES", "10.0.0.0/8")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, jwtx.ExtendedSessionTTL, cfg.TTL())
	require.Equal(t, 2*time.Hour, cfg.Retention)
	require.Equal(t, "arcade", cfg.AppTag)
	require.Equal(t, "redis", cfg.Store)
	require.Equal(t, 9100, cfg.Port)
	require.True(t, cfg.CodeAllowOverrides)
	require.Equal(t, "10.0.0.0/8", cfg.TrustedProxies)

	format, err := cfg.CodeFormat()
	require.NoError(t, err)
	require.Equal(t, 8, format.Length())
}

func TestSessionTTLOverridesProfile(t *testing.T) {
	t.Setenv("CODEGATE_CONFIG_FILE", "")
	t.Setenv("CODEGATE_PROFILE", "extended")
	t.Setenv("CODEGATE_SESSION_TTL", "90m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 90*time.Minute, cfg.TTL())
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [nope"), 0o600))
	t.Setenv("CODEGATE_CONFIG_FILE", path)

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown profile", func(c *Config) { c.Profile = "forever" }},
		{"negative retention", func(c *Config) { c.Retention = -time.Hour }},
		{"empty app tag", func(c *Config) { c.AppTag = " " }},
		{"short code", func(c *Config) { c.CodeLength = 2 }},
		{"one symbol alphabet", func(c *Config) { c.CodeAlphabet = "AAAA" }},
		{"file source without path", func(c *Config) { c.SigningKeySource = "file" }},
		{"unknown key source", func(c *Config) { c.SigningKeySource = "vault" }},
		{"redis without addr", func(c *Config) { c.Store = "redis" }},
		{"postgres without url", func(c *Config) { c.Store = "postgres" }},
		{"unknown store", func(c *Config) { c.Store = "mongo" }},
		{"zero store timeout", func(c *Config) { c.StoreTimeout = 0 }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"bad trusted proxy", func(c *Config) { c.TrustedProxies = "10.0.0.0/8, lb.internal" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	t.Run("reports every problem", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Profile = "forever"
		cfg.Port = 0

		err := cfg.Validate()
		require.ErrorContains(t, err, "profile")
		require.ErrorContains(t, err, "port")
	})
}
