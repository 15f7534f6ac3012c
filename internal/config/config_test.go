package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"database":{"dsn":"postgres://x"},"session":{"secret":"s"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5000, cfg.Port)
	require.EqualValues(t, 1<<20, cfg.MaxBodySize)
	require.Equal(t, 72, cfg.Session.TTLHours)
	require.Equal(t, "caas_session", cfg.Session.CookieName)
	require.Equal(t, "smtp", cfg.Mail.Type)
	require.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	require.Equal(t, 587, cfg.Mail.Port)
	require.Equal(t, "anthropic", cfg.AI.Provider)
	require.Equal(t, 1024, cfg.AI.ChatMaxTokens)
	require.Equal(t, 1500, cfg.AI.NewsMaxTokens)
	require.Equal(t, "local", cfg.FileStore.Type)
	require.Equal(t, 280, cfg.Database.MaxConnLifetime)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"port":8080,"database":{"dsn":"postgres://file"},"session":{"secret":"file"}}`)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("SECRET_KEY", "env-secret")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "postgres://env", cfg.Database.DSN)
	require.Equal(t, "env-secret", cfg.Session.Secret)
	require.Equal(t, "sk-ant", cfg.AI.APIKey)
	require.Equal(t, "sk-ant", cfg.AI.Data["api_key"])
}

func TestLoadReadsDotEnvNextToConfig(t *testing.T) {
	path := writeConfig(t, `{}`)
	envFile := filepath.Join(filepath.Dir(path), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DATABASE_URL=postgres://dotenv\nSECRET_KEY=dotenv\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("DATABASE_URL")
		_ = os.Unsetenv("SECRET_KEY")
	})
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://dotenv", cfg.Database.DSN)
}

func TestLoadRequiresSecret(t *testing.T) {
	path := writeConfig(t, `{"database":{"dsn":"postgres://x"}}`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUnknownMailType(t *testing.T) {
	path := writeConfig(t, `{"database":{"dsn":"postgres://x"},"session":{"secret":"s"},"mail":{"type":"pigeon"}}`)
	_, err := Load(path)
	require.Error(t, err)
}
