package ports

import (
	"context"
	"io"
	"time"

	"ListingScanner/internal/dom"
	"ListingScanner/internal/domain"
)

// PageSource captures the currently rendered page the engine observes.
type PageSource interface {
	Snapshot(ctx context.Context) (*dom.Page, error)
}

// PageSourceFunc adapts a function to the PageSource interface.
type PageSourceFunc func(ctx context.Context) (*dom.Page, error)

// Snapshot calls f.
func (f PageSourceFunc) Snapshot(ctx context.Context) (*dom.Page, error) {
	return f(ctx)
}

// ResultSink persists classification results. Storage is keyed by subject
// id with last-write-wins semantics; the engine never awaits or retries a
// failed store.
type ResultSink interface {
	StoreResult(ctx context.Context, result domain.ClassificationResult) error
}

// ResultStore is the full storage/export surface consumed outside the
// engine (HTTP API, CLI export).
type ResultStore interface {
	ResultSink
	Results(ctx context.Context) ([]domain.ClassificationResult, error)
	Counts(ctx context.Context) (map[domain.Status]int, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	ExportJSON(ctx context.Context, w io.Writer) error
}

// Notifier renders a transient visual result somewhere the operator can
// see it; the engine supplies data and ignores presentation failures.
type Notifier interface {
	PublishResult(ctx context.Context, result domain.ClassificationResult) error
}

// Scheduler controls when evaluation passes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
