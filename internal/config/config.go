// Package config loads the bot configuration from a YAML file, with the
// bot token overridable from the environment so it can stay out of the
// file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full bot configuration
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	HTTP     HTTPConfig     `yaml:"http"`
	Games    GamesConfig    `yaml:"games"`
}

// TelegramConfig configures the chat gateway
type TelegramConfig struct {
	// Token is the bot token; the TELEGRAM_BOT_TOKEN environment
	// variable takes precedence
	Token string `yaml:"token"`
	// ChannelID is the one chat the bot plays games in
	ChannelID int64 `yaml:"channel_id"`
	// UpdateTimeout is the long-poll timeout in seconds
	UpdateTimeout int `yaml:"update_timeout"`
}

// HTTPConfig configures the ops endpoint
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GamesConfig tunes game behavior
type GamesConfig struct {
	// VotesToStart is how many votes start the chosen game
	VotesToStart int `yaml:"votes_to_start"`
	// BSTRecord is the Blood Sweat Tears record to beat
	BSTRecord int `yaml:"bst_record"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Telegram: TelegramConfig{
			UpdateTimeout: 60,
		},
		HTTP: HTTPConfig{
			Port: 8080,
		},
		Games: GamesConfig{
			VotesToStart: 6,
			BSTRecord:    691,
		},
	}
}

// Load reads path over the defaults and applies environment overrides
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required (config or TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChannelID == 0 {
		return fmt.Errorf("telegram channel_id is required")
	}
	if c.Games.VotesToStart < 1 {
		return fmt.Errorf("games.votes_to_start must be at least 1")
	}
	return nil
}
