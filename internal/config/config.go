package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/justinabrahms/checkers/internal/checkers"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Game        GameConfig        `mapstructure:"game"`
	Session     SessionConfig     `mapstructure:"session"`
	Development DevelopmentConfig `mapstructure:"development"`
}

type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	StaticDir string `mapstructure:"static_dir"`
}

type GameConfig struct {
	AIDelay    time.Duration `mapstructure:"ai_delay"`
	HumanColor string        `mapstructure:"human_color"`
	Seed       int64         `mapstructure:"seed"` // 0 seeds from the clock
}

type SessionConfig struct {
	KeyPath string        `mapstructure:"key_path"` // empty generates an ephemeral key
	TTL     time.Duration `mapstructure:"ttl"`
}

type DevelopmentConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// Load reads config.yaml from path (or the default search paths when empty),
// overlays CHECKERS_* environment variables and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Enable environment variables
	v.SetEnvPrefix("CHECKERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, defaults and env only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "./web/static")
	v.SetDefault("game.ai_delay", time.Second)
	v.SetDefault("game.human_color", "red")
	v.SetDefault("game.seed", 0)
	v.SetDefault("session.key_path", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("development.debug", false)
	v.SetDefault("development.log_level", "info")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Game.AIDelay < 0 {
		result = multierror.Append(result, fmt.Errorf("game.ai_delay must not be negative, got %s", c.Game.AIDelay))
	}
	if _, err := checkers.ParseColor(c.Game.HumanColor); err != nil {
		result = multierror.Append(result, fmt.Errorf("game.human_color: %w", err))
	}
	if c.Session.TTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL))
	}

	return result.ErrorOrNil()
}

// HumanColor returns the side played through the browser.
func (c *Config) HumanColor() checkers.Color {
	color, err := checkers.ParseColor(c.Game.HumanColor)
	if err != nil {
		return checkers.Red
	}
	return color
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
