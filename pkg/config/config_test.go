package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "openai", cfg.ChatProvider)
	assert.Equal(t, "gpt-4o", cfg.ChatModel())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 2*time.Second, cfg.CelebrationDelay)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHAT_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.ChatProvider)
	assert.Equal(t, "g-key", cfg.ChatAPIKey())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grassmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("PORT: \"9090\"\nGEOCODE_TIMEOUT: 3s\n"), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.GeocodeTimeout)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("CHAT_PROVIDER", "llama")
	_, err := Load(viper.New(), "")
	assert.Error(t, err)
}
