// internal/collector/factory/factory_test.go
package factory

import (
	"testing"

	"github.com/newthinker/quanta/internal/config"
	"github.com/newthinker/quanta/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := config.Defaults().Provider

	for _, name := range Names {
		c, err := New(name, cfg)
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("bloomberg", config.Defaults().Provider)
	assert.ErrorIs(t, err, core.ErrProviderUnknown)
}

func TestNewRegistry_OnlyConfiguredProviders(t *testing.T) {
	cfg := config.Defaults()

	reg := NewRegistry(cfg)
	assert.Equal(t, []string{"eastmoney", "yahoo"}, reg.Names())

	cfg.Provider.AlphaVantage.APIKey = "demo"
	cfg.Provider.Alpaca.APIKey = "key"
	cfg.Provider.Alpaca.APISecret = "secret"

	reg = NewRegistry(cfg)
	assert.Equal(t, []string{"alpaca", "alphavantage", "eastmoney", "yahoo"}, reg.Names())
}
