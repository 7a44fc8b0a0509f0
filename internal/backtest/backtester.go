package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/quanta/internal/calendar"
	"github.com/newthinker/quanta/internal/core"
	"github.com/newthinker/quanta/internal/logger"
	"go.uber.org/zap"
)

// OHLCVProvider defines the interface for fetching daily OHLCV data
type OHLCVProvider interface {
	Name() string
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.OHLCV, error)
}

// Recorder receives pipeline metrics
type Recorder interface {
	RecordFetch(provider string, duration float64)
	RecordRun(status string, duration float64)
	RecordBreakouts(count int)
}

// Run status labels
const (
	StatusOK            = "ok"
	StatusNoData        = "no_data"
	StatusProviderError = "provider_error"
	StatusInvalidInput  = "invalid_input"
	StatusError         = "error"
)

// Backtester runs the fetch-then-evaluate pipeline
type Backtester struct {
	provider OHLCVProvider
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
}

// Option configures a Backtester
type Option func(*Backtester)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(b *Backtester) {
		if log != nil {
			b.logger = log
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(b *Backtester) {
		b.recorder = r
	}
}

// New creates a new Backtester with the given OHLCV provider
func New(provider OHLCVProvider, opts ...Option) *Backtester {
	b := &Backtester{
		provider: provider,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Provider returns the name of the data provider
func (b *Backtester) Provider() string {
	return b.provider.Name()
}

// Run fetches bars for the request and evaluates the strategy. An empty
// fetch returns core.ErrNoData without evaluating.
func (b *Backtester) Run(ctx context.Context, req Request) (*Result, error) {
	started := b.now()
	runID := uuid.NewString()
	log := logger.ForRun(b.logger, runID, req.Symbol, b.provider.Name())

	result, err := b.run(ctx, runID, req, log)

	status := StatusFor(err)
	if b.recorder != nil {
		b.recorder.RecordRun(status, b.now().Sub(started).Seconds())
	}
	if err != nil {
		log.Debug("analysis failed", zap.String("status", status), zap.Error(err))
		return nil, err
	}

	log.Info("analysis complete",
		zap.Int("bars", result.Bars),
		zap.Int("breakouts", result.Stats.Breakouts),
		zap.Int("closed_trades", result.Stats.ClosedTrades),
		zap.Duration("duration", b.now().Sub(started)),
	)
	return result, nil
}

func (b *Backtester) run(ctx context.Context, runID string, req Request, log *zap.Logger) (*Result, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetchStart := b.now()
	bars, err := b.provider.FetchHistory(ctx, req.Symbol, req.Start, req.End)
	if b.recorder != nil {
		b.recorder.RecordFetch(b.provider.Name(), b.now().Sub(fetchStart).Seconds())
	}
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", req.Symbol, err)
	}

	if len(bars) == 0 {
		log.Warn("no bars in range",
			zap.String("start", calendar.Format(req.Start)),
			zap.String("end", calendar.Format(req.End)),
		)
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("%s between %s and %s",
			req.Symbol, calendar.Format(req.Start), calendar.Format(req.End)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eval, err := Evaluate(bars, req.Params)
	if err != nil {
		return nil, err
	}
	if b.recorder != nil {
		b.recorder.RecordBreakouts(eval.Stats.Breakouts)
	}

	return &Result{
		RunID:       runID,
		Symbol:      req.Symbol,
		Provider:    b.provider.Name(),
		StartDate:   calendar.Date(req.Start),
		EndDate:     calendar.Date(req.End),
		Params:      req.Params,
		Bars:        len(bars),
		Trades:      eval.Trades,
		Stats:       eval.Stats,
		GeneratedAt: b.now().UTC(),
	}, nil
}

// StatusFor maps a pipeline error to a run status label
func StatusFor(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, core.ErrNoData):
		return StatusNoData
	case errors.Is(err, core.ErrDataUnavailable):
		return StatusProviderError
	case errors.Is(err, core.ErrInvalidInput):
		return StatusInvalidInput
	default:
		return StatusError
	}
}
