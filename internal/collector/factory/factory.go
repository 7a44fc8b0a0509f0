// internal/collector/factory/factory.go
package factory

import (
	"fmt"

	"github.com/newthinker/quanta/internal/collector"
	"github.com/newthinker/quanta/internal/collector/alpaca"
	"github.com/newthinker/quanta/internal/collector/alphavantage"
	"github.com/newthinker/quanta/internal/collector/eastmoney"
	"github.com/newthinker/quanta/internal/collector/yahoo"
	"github.com/newthinker/quanta/internal/config"
	"github.com/newthinker/quanta/internal/core"
)

// New creates the collector named by name using provider configuration.
func New(name string, cfg config.ProviderConfig) (collector.Collector, error) {
	switch name {
	case "alphavantage":
		return alphavantage.NewWithBaseURL(cfg.AlphaVantage.APIKey, cfg.AlphaVantage.BaseURL, cfg.Timeout), nil
	case "yahoo":
		return yahoo.NewWithBaseURL(cfg.Yahoo.BaseURL, cfg.Timeout), nil
	case "eastmoney":
		return eastmoney.NewWithBaseURL(cfg.Eastmoney.BaseURL, cfg.Timeout), nil
	case "alpaca":
		return alpaca.New(alpaca.Config{
			APIKey:    cfg.Alpaca.APIKey,
			APISecret: cfg.Alpaca.APISecret,
			BaseURL:   cfg.Alpaca.BaseURL,
			Feed:      cfg.Alpaca.Feed,
		}), nil
	default:
		return nil, core.WrapError(core.ErrProviderUnknown, fmt.Errorf("provider %q", name))
	}
}

// Names lists every provider New can build
var Names = []string{"alphavantage", "yahoo", "alpaca", "eastmoney"}

// NewRegistry registers every provider that has the credentials it needs.
func NewRegistry(cfg *config.Config) *collector.Registry {
	reg := collector.NewRegistry()
	for _, name := range Names {
		if cfg.ValidateProvider(name) != nil {
			continue
		}
		c, err := New(name, cfg.Provider)
		if err != nil {
			continue
		}
		reg.Register(c)
	}
	return reg
}
