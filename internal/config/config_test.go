package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "ENV", "DATABASE_DSN", "DATABASE_URL", "JWT_SECRET", "GEMINI_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Contains(t, cfg.DSN, "root@tcp(127.0.0.1:3306)/codelens?")
	assert.Contains(t, cfg.DSN, "charset=utf8mb4")
	assert.Contains(t, cfg.DSN, "parseTime=True")
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8080
env: production
jwt_secret: from-file
database:
  host: db.internal
  port: 3307
  user: app
  password: pw
  name: reviews
ai:
  request_timeout_seconds: 30
  providers:
    - id: gemini
      type: gemini
      api_key: file-key
      enabled: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Contains(t, cfg.DSN, "app:pw@tcp(db.internal:3307)/reviews?")
	assert.Equal(t, 30, cfg.AI.RequestTimeoutSeconds)
	require.Len(t, cfg.AI.Providers, 1)
	assert.Equal(t, "file-key", cfg.AI.Providers[0].APIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_DSN", "user:pw@tcp(host:3306)/db?parseTime=True")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "user:pw@tcp(host:3306)/db?parseTime=True", cfg.DSN)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestLoad_GeminiKeyInjectsProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	require.Len(t, cfg.AI.Providers, 1)
	p := cfg.AI.Providers[0]
	assert.Equal(t, "gemini", p.ID)
	assert.Equal(t, "gemini", p.Type)
	assert.Equal(t, "env-key", p.APIKey)
	assert.True(t, p.Enabled)
}

func TestLoad_GeminiKeyKeepsConfiguredKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
ai:
  providers:
    - id: gemini
      type: gemini
      api_key: file-key
      enabled: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.AI.Providers, 1)
	assert.Equal(t, "file-key", cfg.AI.Providers[0].APIKey)
}

func TestBuildDSN_ExtraParamsSorted(t *testing.T) {
	dsn := buildDSN(DatabaseConfig{
		Params: map[string]string{"tls": "true", "collation": "utf8mb4_general_ci"},
	})
	assert.Contains(t, dsn, "collation=utf8mb4_general_ci&tls=true")
	// reserved params are not duplicated
	dsn = buildDSN(DatabaseConfig{Params: map[string]string{"charset": "latin1"}})
	assert.NotContains(t, dsn, "latin1")
}
