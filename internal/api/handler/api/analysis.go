// internal/api/handler/api/analysis.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/newthinker/quanta/internal/api/response"
	"github.com/newthinker/quanta/internal/app"
	"github.com/newthinker/quanta/internal/backtest"
	"github.com/newthinker/quanta/internal/core"
	"github.com/newthinker/quanta/internal/report"
	"go.uber.org/zap"
)

const analysisTimeout = 2 * time.Minute

// Analyzer defines the interface needed from app.App.
type Analyzer interface {
	Analyze(ctx context.Context, in app.Input) (*backtest.Result, error)
	Save(ctx context.Context, r *backtest.Result) (string, error)
}

// AnalysisRequest is the request body for running an analysis.
// Omitted fields take the configured defaults.
type AnalysisRequest struct {
	Symbol          string   `json:"symbol"`
	Start           string   `json:"start,omitempty"`
	End             string   `json:"end,omitempty"`
	Provider        string   `json:"provider,omitempty"`
	VolumeThreshold *float64 `json:"volume_threshold,omitempty"`
	PriceThreshold  *float64 `json:"price_threshold,omitempty"`
	HoldingPeriod   *int     `json:"holding_period,omitempty"`
	Save            bool     `json:"save,omitempty"`
}

func (r AnalysisRequest) input() app.Input {
	return app.Input{
		Symbol:          r.Symbol,
		Start:           r.Start,
		End:             r.End,
		Provider:        r.Provider,
		VolumeThreshold: r.VolumeThreshold,
		PriceThreshold:  r.PriceThreshold,
		HoldingPeriod:   r.HoldingPeriod,
	}
}

// AnalysisHandler handles analysis API requests. Each request runs one
// pipeline synchronously.
type AnalysisHandler struct {
	analyzer Analyzer
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(analyzer Analyzer, logger *zap.Logger) *AnalysisHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{analyzer: analyzer, logger: logger}
}

// Run handles POST /api/v1/analysis.
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrInvalidInput, fmt.Errorf("decoding request body: %w", err)))
		return
	}

	result, savedTo, err := h.analyze(r.Context(), req)
	if err != nil {
		h.fail(w, req, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, report.NewView(result), response.Meta{SavedTo: savedTo})
}

// Export handles GET /api/v1/analysis/export and returns the trades as CSV.
func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
	req, err := parseQuery(r.URL.Query())
	if err != nil {
		response.Fail(w, err)
		return
	}

	result, _, err := h.analyze(r.Context(), req)
	if err != nil {
		h.fail(w, req, err)
		return
	}

	// Render fully before writing headers so failures never send partial CSV
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, result.Trades); err != nil {
		h.fail(w, req, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename(result.Symbol)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *AnalysisHandler) analyze(ctx context.Context, req AnalysisRequest) (*backtest.Result, string, error) {
	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	result, err := h.analyzer.Analyze(ctx, req.input())
	if err != nil {
		return nil, "", err
	}

	if !req.Save {
		return result, "", nil
	}
	path, err := h.analyzer.Save(ctx, result)
	if err != nil {
		return nil, "", err
	}
	return result, path, nil
}

func (h *AnalysisHandler) fail(w http.ResponseWriter, req AnalysisRequest, err error) {
	status := response.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("analysis request failed",
			zap.String("symbol", req.Symbol),
			zap.String("code", core.CodeOf(err)),
			zap.Error(err),
		)
	}
	response.Error(w, status, err)
}

func parseQuery(q url.Values) (AnalysisRequest, error) {
	req := AnalysisRequest{
		Symbol:   q.Get("symbol"),
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Provider: q.Get("provider"),
	}

	var err error
	if req.VolumeThreshold, err = queryFloat(q, "volume_threshold"); err != nil {
		return req, err
	}
	if req.PriceThreshold, err = queryFloat(q, "price_threshold"); err != nil {
		return req, err
	}
	if v := q.Get("holding_period"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, core.WrapError(core.ErrInvalidInput, fmt.Errorf("holding_period: %w", err))
		}
		req.HoldingPeriod = &n
	}
	if v := q.Get("save"); v != "" {
		if req.Save, err = strconv.ParseBool(v); err != nil {
			return req, core.WrapError(core.ErrInvalidInput, fmt.Errorf("save: %w", err))
		}
	}
	return req, nil
}

func queryFloat(q url.Values, key string) (*float64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidInput, fmt.Errorf("%s: %w", key, err))
	}
	return &f, nil
}
