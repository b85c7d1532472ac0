package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Discord struct {
		BotToken string `yaml:"bot_token"`
		GuildID  string `yaml:"guild_id"` // optional: restrict command registration to one guild
	} `yaml:"discord"`
	Finnhub struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"finnhub"`
	AlphaVantage struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"alpha_vantage"`
	CAPM struct {
		RiskFreeRate float64 `yaml:"risk_free_rate"` // percent
		MarketReturn float64 `yaml:"market_return"`  // percent
	} `yaml:"capm"`
	Digest struct {
		CategoryName string `yaml:"category_name"`
		ChannelName  string `yaml:"channel_name"`
		FireHour     int    `yaml:"fire_hour"` // local hour of day, 0-23
	} `yaml:"digest"`
	Charts struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"charts"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"` // empty disables the metrics listener
	} `yaml:"metrics"`
	LogLevel string `yaml:"log_level"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Defaults are set before the file is parsed, so an explicit zero
// in the file (fire_hour: 0, risk_free_rate: 0) is honored rather than
// swallowed by a zero-value check.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		cfg.Discord.BotToken = v
	}
	if v := os.Getenv("DISCORD_GUILD_ID"); v != "" {
		cfg.Discord.GuildID = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		cfg.Finnhub.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	cfg.AlphaVantage.BaseURL = "https://www.alphavantage.co/query"
	cfg.CAPM.RiskFreeRate = 4.5
	cfg.CAPM.MarketReturn = 8.0
	cfg.Digest.CategoryName = "Stock Channels"
	cfg.Digest.ChannelName = "stock-news"
	cfg.Digest.FireHour = 6
	cfg.Charts.OutputDir = "charts"
	cfg.LogLevel = "info"
	return cfg
}

// Validate checks fields the process cannot run without. Provider keys are
// deliberately not checked here: a missing key disables only the commands
// that depend on it (fail closed per component).
func (c *Config) Validate() error {
	if c.Discord.BotToken == "" {
		return fmt.Errorf("discord.bot_token is required")
	}
	if c.Digest.FireHour < 0 || c.Digest.FireHour > 23 {
		return fmt.Errorf("digest.fire_hour must be within 0-23")
	}
	return nil
}
