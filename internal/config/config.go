package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/newthinker/quanta/internal/core"
	"github.com/spf13/viper"
)

// APIKeyEnv is the environment variable holding the Alpha Vantage credential.
const APIKeyEnv = "ALPHAVANTAGE_API_KEY"

type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Server   ServerConfig   `mapstructure:"server"`
	Export   ExportConfig   `mapstructure:"export"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ProviderConfig selects and configures the market-data provider.
type ProviderConfig struct {
	Name         string             `mapstructure:"name"`
	Timeout      time.Duration      `mapstructure:"timeout"`
	AlphaVantage AlphaVantageConfig `mapstructure:"alphavantage"`
	Alpaca       AlpacaConfig       `mapstructure:"alpaca"`
	Yahoo        YahooConfig        `mapstructure:"yahoo"`
	Eastmoney    EastmoneyConfig    `mapstructure:"eastmoney"`
}

type AlphaVantageConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type AlpacaConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	BaseURL   string `mapstructure:"base_url"`
	Feed      string `mapstructure:"feed"` // "iex" or "sip"
}

type YahooConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// EastmoneyConfig configures the A-share daily kline endpoint.
type EastmoneyConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// StrategyConfig holds the default breakout parameters.
type StrategyConfig struct {
	VolumeThreshold float64 `mapstructure:"volume_threshold"`
	PriceThreshold  float64 `mapstructure:"price_threshold"`
	HoldingPeriod   int     `mapstructure:"holding_period"`
	VolumeWindow    int     `mapstructure:"volume_window"`
	DefaultStart    string  `mapstructure:"default_start"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ExportConfig selects where saved CSV reports go.
type ExportConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are not an error; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from file on top of Defaults. An empty path
// skips the file and uses defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Provider.AlphaVantage.APIKey == "" {
		cfg.Provider.AlphaVantage.APIKey = os.Getenv(APIKeyEnv)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:    "alphavantage",
			Timeout: 30 * time.Second,
			AlphaVantage: AlphaVantageConfig{
				BaseURL: "https://www.alphavantage.co",
			},
			Alpaca: AlpacaConfig{
				Feed: "iex",
			},
			Yahoo: YahooConfig{
				BaseURL: "https://query1.finance.yahoo.com",
			},
			Eastmoney: EastmoneyConfig{
				BaseURL: "https://push2his.eastmoney.com",
			},
		},
		Strategy: StrategyConfig{
			VolumeThreshold: 200.0,
			PriceThreshold:  2.0,
			HoldingPeriod:   10,
			VolumeWindow:    20,
			DefaultStart:    "2024-01-01",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Export: ExportConfig{
			Type: "localfs",
			Path: "exports",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// setDefaults registers every leaf of d with viper so that environment
// overrides apply to keys absent from the config file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("provider.name", d.Provider.Name)
	v.SetDefault("provider.timeout", d.Provider.Timeout)
	v.SetDefault("provider.alphavantage.api_key", d.Provider.AlphaVantage.APIKey)
	v.SetDefault("provider.alphavantage.base_url", d.Provider.AlphaVantage.BaseURL)
	v.SetDefault("provider.alpaca.api_key", d.Provider.Alpaca.APIKey)
	v.SetDefault("provider.alpaca.api_secret", d.Provider.Alpaca.APISecret)
	v.SetDefault("provider.alpaca.base_url", d.Provider.Alpaca.BaseURL)
	v.SetDefault("provider.alpaca.feed", d.Provider.Alpaca.Feed)
	v.SetDefault("provider.yahoo.base_url", d.Provider.Yahoo.BaseURL)
	v.SetDefault("provider.eastmoney.base_url", d.Provider.Eastmoney.BaseURL)

	v.SetDefault("strategy.volume_threshold", d.Strategy.VolumeThreshold)
	v.SetDefault("strategy.price_threshold", d.Strategy.PriceThreshold)
	v.SetDefault("strategy.holding_period", d.Strategy.HoldingPeriod)
	v.SetDefault("strategy.volume_window", d.Strategy.VolumeWindow)
	v.SetDefault("strategy.default_start", d.Strategy.DefaultStart)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("export.type", d.Export.Type)
	v.SetDefault("export.path", d.Export.Path)
	v.SetDefault("export.s3.bucket", d.Export.S3.Bucket)
	v.SetDefault("export.s3.endpoint", d.Export.S3.Endpoint)
	v.SetDefault("export.s3.region", d.Export.S3.Region)
	v.SetDefault("export.s3.access_key", d.Export.S3.AccessKey)
	v.SetDefault("export.s3.secret_key", d.Export.S3.SecretKey)
	v.SetDefault("export.s3.prefix", d.Export.S3.Prefix)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Provider.Timeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("provider timeout cannot be negative, got %s", c.Provider.Timeout))
	}

	// Strategy defaults validation
	if c.Strategy.HoldingPeriod < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("holding_period must be at least 1, got %d", c.Strategy.HoldingPeriod))
	}
	if c.Strategy.VolumeWindow < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("volume_window must be at least 1, got %d", c.Strategy.VolumeWindow))
	}
	if c.Strategy.DefaultStart != "" {
		if _, err := time.Parse("2006-01-02", c.Strategy.DefaultStart); err != nil {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("default_start must be YYYY-MM-DD: %w", err))
		}
	}

	// Export validation
	switch c.Export.Type {
	case "", "localfs":
	case "s3":
		if c.Export.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when export type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown export type: %s", c.Export.Type))
	}

	return nil
}

// ValidateProvider checks that credentials exist for the named provider.
func (c *Config) ValidateProvider(name string) error {
	switch name {
	case "alphavantage":
		if c.Provider.AlphaVantage.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("alphavantage api_key required (set %s)", APIKeyEnv))
		}
	case "alpaca":
		if c.Provider.Alpaca.APIKey == "" || c.Provider.Alpaca.APISecret == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("alpaca api_key and api_secret required when provider is alpaca"))
		}
	case "yahoo", "eastmoney":
	default:
		return core.WrapError(core.ErrProviderUnknown, fmt.Errorf("provider %q", name))
	}
	return nil
}
