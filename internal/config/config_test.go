package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.BasicConfig.ServerAddress)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "data", "speakersite.db"), cfg.Database.DSN)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.True(t, cfg.Chat.IncludeTalks)
	assert.True(t, cfg.Chat.SerializeTurns)
	assert.False(t, cfg.Chat.RequireAuth)
	assert.Zero(t, cfg.Chat.HistoryLimit)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
	assert.Equal(t, 3000, cfg.Providers["claude"].MaxTokens)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
  "basic_config": {"server_address": ":9000", "mode": "release"},
  "database": {"driver": "sqlite", "dsn": ":memory:"},
  "llm": {"provider": "claude", "model": "claude-sonnet"},
  "chat": {"owner_name": "Ada", "include_talks": false, "history_limit": 20, "workers": 0},
  "auth": {"admins": ["ada"], "token_ttl_hours": 0}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.BasicConfig.ServerAddress)
	assert.Equal(t, "release", cfg.BasicConfig.Mode)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "claude-sonnet", cfg.LLM.Model)
	assert.Equal(t, "Ada", cfg.Chat.OwnerName)
	assert.False(t, cfg.Chat.IncludeTalks)
	assert.Equal(t, 20, cfg.Chat.HistoryLimit)
	assert.Equal(t, 1, cfg.Chat.Workers)
	assert.Equal(t, []string{"ada"}, cfg.Auth.Admins)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"chat": {"owner_name": "Ada"}}`)
	t.Setenv("SPEAKERSITE_CHAT_OWNER_NAME", "Grace")
	t.Setenv("SPEAKERSITE_DATABASE_DRIVER", "postgresql")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/site?sslmode=disable")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Grace", cfg.Chat.OwnerName)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost/site?sslmode=disable", cfg.Database.DSN)
}

func TestLoadDatabaseURLSelectsPostgres(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/site?sslmode=disable")

	cfg, err := Load(filepath.Join(dir, "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/site?sslmode=disable", cfg.Database.DSN)
}

func TestLoadExplicitDriverWinsOverDSN(t *testing.T) {
	path := writeConfig(t, `{"database": {"driver": "sqlite3", "dsn": "postgresql.db"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "postgresql.db"), cfg.Database.DSN)
}

func TestLoadPathFromEnv(t *testing.T) {
	path := writeConfig(t, `{"chat": {"owner_headline": "keynote speaker"}}`)
	t.Setenv(ConfigEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "keynote speaker", cfg.Chat.OwnerHeadline)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `{"database": {"driver": "oracle"}}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeConfig(t, `{"chat": `)

	_, err := Load(path)
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Chat.Workers)
	assert.Equal(t, "gpt-4o-mini", cfg.Providers["openai"].Model)
}
