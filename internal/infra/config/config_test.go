package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
store: memory
discord:
  token: abc
  guild_ids: ["1", "2"]
  prefix: "?"
  admin_role_ids: ["10"]
rules:
  dispatch_timeout: 3s
  phrase_alert_cooldown: 1m
log:
  level: debug
  format: json
`

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))
	t.Setenv("DISCORD_BOT_TOKEN", "from-env")
	t.Setenv("MOD_ROLE_IDS", "20, 21")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "from-env", cfg.Discord.Token)
	assert.Equal(t, []string{"1", "2"}, cfg.Discord.GuildIDs)
	assert.Equal(t, "?", cfg.Discord.Prefix)
	assert.Equal(t, []string{"20", "21"}, cfg.Discord.ModRoleIDs)
	assert.Equal(t, 3*time.Second, cfg.Rules.DispatchTimeout)
	assert.Equal(t, time.Minute, cfg.Rules.PhraseAlertCooldown)
	assert.Equal(t, 12*time.Second, cfg.Rules.EventTimeout, "default kept")
	require.NoError(t, cfg.Validate())
}

func TestLoad_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nope: 1\n"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv_BadDuration(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, func(k string) (string, bool) {
		if k == "DISPATCH_TIMEOUT" {
			return "soon", true
		}
		return "", false
	})
	assert.ErrorContains(t, err, "DISPATCH_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "DISCORD_BOT_TOKEN")

	cfg.DatabaseURL = "postgres://x"
	cfg.Discord.Token = "t"
	assert.NoError(t, cfg.Validate())

	cfg.Store = "redis"
	assert.Error(t, cfg.ValidateStore())

	cfg = Default()
	cfg.Store = StoreMemory
	cfg.Discord.Token = "t"
	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())
}

func TestLogConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.Logger(&buf).Info("hidden")
	assert.Empty(t, buf.String())

	LogConfig{Level: "debug", Format: "json"}.Logger(&buf).Debug("shown", "k", "v")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"k":"v"`)
}
