package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ListingScanner/internal/classify"
	"ListingScanner/internal/domain"
	"ListingScanner/internal/extract"
	"ListingScanner/internal/ports"
	"ListingScanner/internal/readiness"
)

const emitTimeout = 5 * time.Second

// EngineDeps wires the driven adapters into the evaluation engine.
type EngineDeps struct {
	Source   ports.PageSource
	Sink     ports.ResultSink
	Notifier ports.Notifier
	Machine  *readiness.Machine
	Logger   *slog.Logger
	Now      func() time.Time
}

// Engine runs evaluation passes: snapshot the page, advance the readiness
// machine, classify when checkable, emit at most one result per
// (subject, panel session). A mutex serializes passes so scheduler ticks
// and manual check requests never interleave.
type Engine struct {
	source   ports.PageSource
	sink     ports.ResultSink
	notifier ports.Notifier
	machine  *readiness.Machine
	logger   *slog.Logger
	now      func() time.Time

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewEngine constructs the engine.
func NewEngine(deps EngineDeps) *Engine {
	machine := deps.Machine
	if machine == nil {
		machine = readiness.NewMachine(&domain.PollState{}, deps.Logger)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		source:   deps.Source,
		sink:     deps.Sink,
		notifier: deps.Notifier,
		machine:  machine,
		logger:   deps.Logger,
		now:      now,
	}
}

// RunPass executes one evaluation pass. A nil result with a nil error
// means the pass completed with nothing to report (no panel, pending, or
// already checked).
func (e *Engine) RunPass(ctx context.Context) (*domain.ClassificationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pass(ctx)
}

// CheckNow resets the dedup marker and runs a pass immediately. A request
// arriving mid-pass waits for that pass to finish rather than interleaving.
func (e *Engine) CheckNow(ctx context.Context) (*domain.ClassificationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.machine.ForceRecheck()
	return e.pass(ctx)
}

func (e *Engine) pass(ctx context.Context) (*domain.ClassificationResult, error) {
	if e.source == nil {
		return nil, nil
	}

	page, err := e.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot page: %w", err)
	}

	ev := e.machine.Evaluate(page)
	e.debug("evaluated tick", "state", string(ev.State), "asin", ev.SubjectID)

	if !ev.ShouldCheck {
		return nil, nil
	}

	outcome := classify.Classify(page, ev)
	result := &domain.ClassificationResult{
		SubjectID: ev.SubjectID,
		Status:    outcome.Status,
		Condition: ev.Condition,
		Message:   outcome.Message,
		Indicator: outcome.Indicator,
		Rank:      extract.Rank(page),
		Title:     extract.Title(page),
		SourceURL: page.URL,
		CheckedAt: e.now().UTC(),
	}

	e.machine.MarkChecked(ev.SubjectID)
	e.emit(*result)

	return result, nil
}

// emit hands the result to the sink and notifier without awaiting either.
// Failures are logged and dropped; the caller still receives the result,
// and the next distinct subject (or a manual re-check) is the only retry
// path.
func (e *Engine) emit(result domain.ClassificationResult) {
	if e.sink != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
			defer cancel()
			if err := e.sink.StoreResult(ctx, result); err != nil {
				e.warn("store result", "asin", result.SubjectID, "error", err)
			}
		}()
	}
	if e.notifier != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
			defer cancel()
			if err := e.notifier.PublishResult(ctx, result); err != nil {
				e.warn("publish result", "asin", result.SubjectID, "error", err)
			}
		}()
	}
}

// Drain blocks until in-flight emissions finish; used on shutdown and in
// tests.
func (e *Engine) Drain() {
	e.wg.Wait()
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
