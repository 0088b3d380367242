package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigEnv names the environment variable holding the config file path.
const ConfigEnv = "SPEAKERSITE_CONFIG"

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `mapstructure:"basic_config"`
	Database    DatabaseConfig            `mapstructure:"database"`
	Redis       RedisConfig               `mapstructure:"redis"`
	Providers   map[string]ProviderConfig `mapstructure:"providers"`
	LLM         LLMConfig                 `mapstructure:"llm"`
	Chat        ChatConfig                `mapstructure:"chat"`
	Auth        AuthConfig                `mapstructure:"auth"`
	Log         LogConfig                 `mapstructure:"log"`
}

type BasicConfig struct {
	ServerAddress string `mapstructure:"server_address"`
	Mode          string `mapstructure:"mode"`
}

// DatabaseConfig selects a driver and either a raw DSN or the parts to build one.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	Params   string `mapstructure:"params"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ProviderConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// LLMConfig picks which entry of Providers answers chat turns.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

type ChatConfig struct {
	OwnerName      string `mapstructure:"owner_name"`
	OwnerHeadline  string `mapstructure:"owner_headline"`
	RequireAuth    bool   `mapstructure:"require_auth"`
	IncludeTalks   bool   `mapstructure:"include_talks"`
	HistoryLimit   int    `mapstructure:"history_limit"`
	SerializeTurns bool   `mapstructure:"serialize_turns"`
	Workers        int    `mapstructure:"workers"`
	QueueSize      int    `mapstructure:"queue_size"`
}

type AuthConfig struct {
	TokenTTLHours int      `mapstructure:"token_ttl_hours"`
	Admins        []string `mapstructure:"admins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the provided path (defaults to config.json).
// A missing file is not an error: defaults and environment variables apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path == "" {
		path = "config.json"
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(absPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("SPEAKERSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", absPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(filepath.Dir(absPath)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is supplied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	_ = cfg.normalize(".")
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("basic_config.server_address", ":8090")
	v.SetDefault("basic_config.mode", "debug")

	v.SetDefault("database.dsn", "data/speakersite.db")
	v.SetDefault("database.params", "parseTime=true&charset=utf8mb4")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("providers.openai.model", "gpt-4o-mini")
	v.SetDefault("providers.claude.model", "claude-3-5-haiku-latest")
	v.SetDefault("providers.claude.max_tokens", 3000)
	v.SetDefault("providers.gemini.model", "gemini-2.0-flash")

	v.SetDefault("chat.owner_name", "the site owner")
	v.SetDefault("chat.owner_headline", "a speaker and enterprise technology executive")
	v.SetDefault("chat.require_auth", false)
	v.SetDefault("chat.include_talks", true)
	v.SetDefault("chat.history_limit", 0)
	v.SetDefault("chat.serialize_turns", true)
	v.SetDefault("chat.workers", 4)
	v.SetDefault("chat.queue_size", 64)

	v.SetDefault("auth.token_ttl_hours", 24)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"database.dsn":             "DATABASE_URL",
		"providers.openai.api_key": "OPENAI_API_KEY",
		"providers.claude.api_key": "ANTHROPIC_API_KEY",
		"providers.gemini.api_key": "GEMINI_API_KEY",
		"log.level":                "LOG_LEVEL",
	}
	// no default: an unset driver is inferred from the dsn
	if err := v.BindEnv("database.driver", "SPEAKERSITE_DATABASE_DRIVER"); err != nil {
		return fmt.Errorf("bind env database.driver: %w", err)
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "SPEAKERSITE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	return nil
}

func (c *Config) normalize(baseDir string) error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = driverForDSN(c.Database.DSN)
	}
	switch c.Database.Driver {
	case "sqlite", "sqlite3":
		c.Database.Driver = "sqlite3"
		if c.Database.DSN == "" {
			return errors.New("database.dsn must be configured for sqlite")
		}
		if c.Database.DSN != ":memory:" && !strings.HasPrefix(c.Database.DSN, "file:") && !filepath.IsAbs(c.Database.DSN) {
			c.Database.DSN = filepath.Join(baseDir, c.Database.DSN)
		}
	case "mysql", "postgres":
	case "postgresql":
		c.Database.Driver = "postgres"
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Chat.Workers <= 0 {
		c.Chat.Workers = 1
	}
	if c.Chat.HistoryLimit < 0 {
		c.Chat.HistoryLimit = 0
	}
	if c.Auth.TokenTTLHours <= 0 {
		c.Auth.TokenTTLHours = 24
	}
	return nil
}

// driverForDSN picks postgres for URL-style connection strings such as
// DATABASE_URL and sqlite3 for everything else.
func driverForDSN(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}
