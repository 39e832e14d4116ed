package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	LogLevel string

	ChatProvider string
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	MapboxAccessToken string
	AmapKey           string
	WeatherAPIKey     string
	SerpAPIKey        string

	PostgresURL string

	SessionTTL        time.Duration
	GeocodeTimeout    time.Duration
	CelebrationDelay  time.Duration
	ChatRatePerMinute int

	AllowedOrigins []string
	PublicBaseURL  string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CHAT_PROVIDER", "openai")
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("GEOCODE_TIMEOUT", "10s")
	v.SetDefault("CELEBRATION_DELAY", "2s")
	v.SetDefault("CHAT_RATE_PER_MINUTE", 20)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	for _, key := range []string{
		"OPENAI_API_KEY", "GEMINI_API_KEY", "MAPBOX_ACCESS_TOKEN", "AMAP_KEY",
		"WEATHERAPI_KEY", "SERPAPI_KEY", "POSTGRES_URL",
	} {
		v.SetDefault(key, "")
	}
}

// Load reads .env (when present), the optional config file and the process
// environment, in increasing order of precedence.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Port:              v.GetString("PORT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		ChatProvider:      strings.ToLower(v.GetString("CHAT_PROVIDER")),
		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		OpenAIModel:       v.GetString("OPENAI_MODEL"),
		GeminiAPIKey:      v.GetString("GEMINI_API_KEY"),
		GeminiModel:       v.GetString("GEMINI_MODEL"),
		MapboxAccessToken: v.GetString("MAPBOX_ACCESS_TOKEN"),
		AmapKey:           v.GetString("AMAP_KEY"),
		WeatherAPIKey:     v.GetString("WEATHERAPI_KEY"),
		SerpAPIKey:        v.GetString("SERPAPI_KEY"),
		PostgresURL:       v.GetString("POSTGRES_URL"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		GeocodeTimeout:    v.GetDuration("GEOCODE_TIMEOUT"),
		CelebrationDelay:  v.GetDuration("CELEBRATION_DELAY"),
		ChatRatePerMinute: v.GetInt("CHAT_RATE_PER_MINUTE"),
		AllowedOrigins:    splitList(v.GetString("ALLOWED_ORIGINS")),
		PublicBaseURL:     strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.ChatProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unsupported CHAT_PROVIDER %q, use openai or gemini", c.ChatProvider)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.GeocodeTimeout <= 0 {
		return fmt.Errorf("GEOCODE_TIMEOUT must be positive")
	}
	return nil
}

// ChatAPIKey returns the key for the selected chat provider.
func (c *Config) ChatAPIKey() string {
	if c.ChatProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

func (c *Config) ChatModel() string {
	if c.ChatProvider == "gemini" {
		return c.GeminiModel
	}
	return c.OpenAIModel
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
