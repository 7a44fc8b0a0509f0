// Package app wires configuration, providers, metrics and export storage
// into analysis runs shared by the CLI and the HTTP API.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/quanta/internal/backtest"
	"github.com/newthinker/quanta/internal/calendar"
	"github.com/newthinker/quanta/internal/collector"
	"github.com/newthinker/quanta/internal/collector/factory"
	"github.com/newthinker/quanta/internal/config"
	"github.com/newthinker/quanta/internal/core"
	"github.com/newthinker/quanta/internal/metrics"
	"github.com/newthinker/quanta/internal/report"
	"github.com/newthinker/quanta/internal/storage/archive"
	"go.uber.org/zap"
)

// Input is an analysis request as typed by a user. Empty and nil fields
// take configured defaults.
type Input struct {
	Symbol          string
	Start           string // YYYY-MM-DD
	End             string // YYYY-MM-DD
	Provider        string
	VolumeThreshold *float64
	PriceThreshold  *float64
	HoldingPeriod   *int
}

// App is the main application orchestrator
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	collectors *collector.Registry
	metrics    *metrics.Registry
	now        func() time.Time

	mu       sync.Mutex
	exporter *report.Exporter
}

// New creates a new App instance. Providers with missing credentials are
// not registered.
func New(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		collectors: factory.NewRegistry(cfg),
		now:        time.Now,
	}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewRegistry()
	}
	return a
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the application logger
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Metrics returns the metrics registry, or nil when metrics are disabled
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Collectors returns the provider registry
func (a *App) Collectors() *collector.Registry {
	return a.collectors
}

// RegisterCollector adds or replaces a provider
func (a *App) RegisterCollector(c collector.Collector) {
	a.collectors.Register(c)
}

// DefaultParams returns the configured strategy parameters
func (a *App) DefaultParams() backtest.Params {
	s := a.cfg.Strategy
	return backtest.Params{
		VolumeThreshold: s.VolumeThreshold,
		PriceThreshold:  s.PriceThreshold,
		HoldingPeriod:   s.HoldingPeriod,
		VolumeWindow:    s.VolumeWindow,
	}
}

// Request validates in and fills defaults
func (a *App) Request(in Input) (backtest.Request, error) {
	symbol := strings.TrimSpace(in.Symbol)
	if err := collector.ValidateSymbol(symbol); err != nil {
		return backtest.Request{}, err
	}

	startText := in.Start
	if startText == "" {
		startText = a.cfg.Strategy.DefaultStart
	}
	start, err := calendar.Parse(startText)
	if err != nil {
		return backtest.Request{}, core.WrapError(core.ErrInvalidInput,
			fmt.Errorf("invalid start date %q (expected YYYY-MM-DD)", startText))
	}

	end := calendar.Date(a.now())
	if in.End != "" {
		end, err = calendar.Parse(in.End)
		if err != nil {
			return backtest.Request{}, core.WrapError(core.ErrInvalidInput,
				fmt.Errorf("invalid end date %q (expected YYYY-MM-DD)", in.End))
		}
	}

	params := a.DefaultParams()
	if in.VolumeThreshold != nil {
		params.VolumeThreshold = *in.VolumeThreshold
	}
	if in.PriceThreshold != nil {
		params.PriceThreshold = *in.PriceThreshold
	}
	if in.HoldingPeriod != nil {
		params.HoldingPeriod = *in.HoldingPeriod
	}
	if err := params.Validate(); err != nil {
		return backtest.Request{}, err
	}

	return backtest.Request{Symbol: symbol, Start: start, End: end, Params: params}, nil
}

// Backtester returns a pipeline bound to the named provider. An empty
// name selects the configured provider.
func (a *App) Backtester(provider string) (*backtest.Backtester, error) {
	if provider == "" {
		provider = a.cfg.Provider.Name
	}

	c, err := a.collectors.Lookup(provider)
	if err != nil {
		// Report missing credentials rather than an unknown name
		if cfgErr := a.cfg.ValidateProvider(provider); cfgErr != nil {
			return nil, cfgErr
		}
		return nil, err
	}

	opts := []backtest.Option{backtest.WithLogger(a.logger)}
	if a.metrics != nil {
		opts = append(opts, backtest.WithRecorder(a.metrics))
	}
	return backtest.New(c, opts...), nil
}

// Analyze validates in and runs the pipeline
func (a *App) Analyze(ctx context.Context, in Input) (*backtest.Result, error) {
	req, err := a.Request(in)
	if err != nil {
		return nil, err
	}
	bt, err := a.Backtester(in.Provider)
	if err != nil {
		return nil, err
	}
	return bt.Run(ctx, req)
}

// Exporter returns the report exporter, creating the storage backend on
// first use.
func (a *App) Exporter() (*report.Exporter, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.exporter != nil {
		return a.exporter, nil
	}

	store, err := archive.New(a.cfg.Export)
	if err != nil {
		return nil, fmt.Errorf("creating export storage: %w", err)
	}

	var rec report.ExportRecorder
	if a.metrics != nil {
		rec = a.metrics
	}
	a.exporter = report.NewExporter(store, archive.Backend(a.cfg.Export), rec)
	return a.exporter, nil
}

// Save writes the result's CSV report to export storage
func (a *App) Save(ctx context.Context, r *backtest.Result) (string, error) {
	exp, err := a.Exporter()
	if err != nil {
		return "", err
	}
	path, err := exp.Save(ctx, r)
	if err != nil {
		return "", err
	}
	a.logger.Info("report saved",
		zap.String("run_id", r.RunID),
		zap.String("symbol", r.Symbol),
		zap.String("path", path),
		zap.String("backend", archive.Backend(a.cfg.Export)),
	)
	return path, nil
}
