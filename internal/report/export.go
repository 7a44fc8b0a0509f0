package report

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/newthinker/quanta/internal/backtest"
	"github.com/newthinker/quanta/internal/core"
	"github.com/newthinker/quanta/internal/storage/archive"
)

// ExportRecorder counts saved exports per backend
type ExportRecorder interface {
	RecordExport(backend, status string)
}

// Exporter saves CSV reports to archive storage
type Exporter struct {
	store    archive.Storage
	backend  string
	recorder ExportRecorder
}

// NewExporter creates an exporter. recorder may be nil.
func NewExporter(store archive.Storage, backend string, recorder ExportRecorder) *Exporter {
	return &Exporter{store: store, backend: backend, recorder: recorder}
}

// ExportPath returns the storage path of a run's CSV report
func ExportPath(runID, ticker string) string {
	return path.Join(runID, Filename(ticker))
}

// Save writes the result's trades as CSV and returns the storage path
func (e *Exporter) Save(ctx context.Context, r *backtest.Result) (string, error) {
	p, err := e.save(ctx, r)
	if e.recorder != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		e.recorder.RecordExport(e.backend, status)
	}
	return p, err
}

func (e *Exporter) save(ctx context.Context, r *backtest.Result) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, r.Trades); err != nil {
		return "", err
	}

	p := ExportPath(r.RunID, r.Symbol)
	if err := e.store.Write(ctx, p, buf.Bytes()); err != nil {
		return "", core.WrapError(core.ErrExportFailed, fmt.Errorf("writing %s to %s: %w", p, e.backend, err))
	}
	return p, nil
}
