package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BOT_TOKEN", "TELEGRAM_RUN_MODE", "VK_API_TOKEN", "VK_API_BASE_URL",
		"VK_API_VERSION", "LINKS_PATH", "LOG_LEVEL", "WEBHOOK_URL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFromFileWithDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
telegram:
  token: tg-token
vk:
  token: vk-token
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tg-token", cfg.Telegram.Token)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, "https://api.vk.com/method", cfg.VK.BaseURL)
	assert.Equal(t, "5.199", cfg.VK.Version)
	assert.Equal(t, 5*time.Second, cfg.VK.Timeout())
	assert.Equal(t, "links.json", cfg.Storage.LinksPath)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
telegram:
  token: from-file
vk:
  token: vk-token
storage:
  links_path: /data/links.json
`)
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, "/data/links.json", cfg.Storage.LinksPath)
}

func TestLoadWithoutFileUsesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "tg-token")
	t.Setenv("VK_API_TOKEN", "vk-token")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tg-token", cfg.Telegram.Token)
	assert.Equal(t, "vk-token", cfg.VK.Token)
}

func TestNormalizeRequiresTokens(t *testing.T) {
	err := Normalize(&Config{VK: VKConfig{Token: "vk"}})
	assert.ErrorContains(t, err, "telegram token")

	err = Normalize(&Config{Telegram: TelegramConfig{Token: "tg"}})
	assert.ErrorContains(t, err, "vk token")
}

func TestNormalizeRunModes(t *testing.T) {
	base := func() *Config {
		return &Config{
			Telegram: TelegramConfig{Token: "tg"},
			VK:       VKConfig{Token: "vk"},
		}
	}

	cfg := base()
	cfg.Telegram.RunMode = "POLLING"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)

	cfg = base()
	cfg.Telegram.RunMode = "webhook"
	assert.ErrorContains(t, Normalize(cfg), "webhook.url")

	cfg = base()
	cfg.Telegram.RunMode = "webhook"
	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com/hook", Listen: "0.0.0.0", Port: 8443}
	require.NoError(t, Normalize(cfg))

	cfg = base()
	cfg.Telegram.RunMode = "carrier-pigeon"
	assert.ErrorContains(t, Normalize(cfg), "run_mode")
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "tg"},
		VK:        VKConfig{Token: "vk"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{" Callback ", "message"}},
	}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, []string{"callback", "message"}, cfg.RateLimit.ExcludeUpdates)

	cfg.RateLimit.ExcludeUpdates = []string{"inline_query"}
	assert.ErrorContains(t, Normalize(cfg), "exclude_updates")
}
