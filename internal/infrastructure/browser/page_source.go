// Package browser snapshots the rendered page of a running Chrome via
// the DevTools protocol. The engine never drives the browser; it only
// reads what the operator's session has already rendered.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"ListingScanner/internal/dom"
	"ListingScanner/internal/ports"
)

// Config holds the connection settings for the observed browser.
type Config struct {
	// DebuggerURL of an already-running Chrome. When empty, a browser is
	// launched locally instead.
	DebuggerURL string
	Headless    bool
	// PageURLPattern selects which open tab to observe; the first tab
	// whose URL contains the pattern wins. Empty selects the first tab.
	PageURLPattern  string
	SnapshotTimeout time.Duration
}

// PageSource implements ports.PageSource over a rod browser connection.
type PageSource struct {
	browser *rod.Browser
	cfg     Config
	logger  *slog.Logger
}

var _ ports.PageSource = (*PageSource)(nil)

// Connect attaches to the configured browser, launching one when no
// debugger URL is provided.
func Connect(cfg Config, logger *slog.Logger) (*PageSource, error) {
	controlURL := cfg.DebuggerURL
	if controlURL == "" {
		var err error
		controlURL, err = launcher.New().Headless(cfg.Headless).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	if cfg.SnapshotTimeout <= 0 {
		cfg.SnapshotTimeout = 10 * time.Second
	}

	return &PageSource{browser: browser, cfg: cfg, logger: logger}, nil
}

// Close detaches from the browser without closing the operator's session.
func (s *PageSource) Close() error {
	if s.browser == nil {
		return nil
	}
	return s.browser.Close()
}

// Snapshot serializes the observed tab's current DOM and wraps it as a
// dom.Page.
//
// TODO: page.HTML does not serialize open shadow roots as declarative
// templates on every Chrome version; switch to a CDP DOMSnapshot-based
// serializer once rod exposes includeShadowTree there.
func (s *PageSource) Snapshot(ctx context.Context) (*dom.Page, error) {
	if s.browser == nil {
		return nil, fmt.Errorf("browser not connected")
	}

	page, err := s.pickPage()
	if err != nil {
		return nil, err
	}
	page = page.Context(ctx).Timeout(s.cfg.SnapshotTimeout)

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("serialize page: %w", err)
	}

	snapshot, err := dom.NewPage(info.URL, strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("captured snapshot", "url", info.URL, "bytes", len(html))
	}
	return snapshot, nil
}

func (s *PageSource) pickPage() (*rod.Page, error) {
	pages, err := s.browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no open pages")
	}

	if s.cfg.PageURLPattern == "" {
		return pages.First(), nil
	}

	for _, page := range pages {
		info, err := page.Info()
		if err != nil {
			continue
		}
		if strings.Contains(info.URL, s.cfg.PageURLPattern) {
			return page, nil
		}
	}

	return nil, fmt.Errorf("no page matching %q", s.cfg.PageURLPattern)
}
