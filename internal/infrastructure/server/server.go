// Package server exposes the engine's check API and the sink's
// aggregate/export surface over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"ListingScanner/internal/domain"
	"ListingScanner/internal/ports"
)

// Checker triggers an immediate out-of-band evaluation pass.
type Checker interface {
	CheckNow(ctx context.Context) (*domain.ClassificationResult, error)
}

// Server wraps the Fiber app and its dependencies.
type Server struct {
	App     *fiber.App
	checker Checker
	store   ports.ResultStore
	logger  *slog.Logger
}

// New builds the app and registers all routes.
func New(checker Checker, store ports.ResultStore, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "error": err.Error()})
		},
	})
	app.Use(recover.New())

	s := &Server{App: app, checker: checker, store: store, logger: logger}

	api := app.Group("/api")
	api.Post("/check-now", s.checkNow)
	api.Get("/results", s.results)
	api.Get("/counts", s.counts)
	api.Get("/export.csv", s.exportCSV)
	api.Get("/export.json", s.exportJSON)

	return s
}

// Listen serves until the app is shut down.
func (s *Server) Listen(addr string) error {
	return s.App.Listen(addr)
}

// Shutdown drains connections and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}

// checkNow runs an immediate pass with manual-re-check semantics and
// replies with the result, or null when no panel was checkable. The
// request body may carry the message envelope {"type": "CHECK_NOW"};
// any other type is rejected.
func (s *Server) checkNow(c fiber.Ctx) error {
	if len(c.Body()) > 0 {
		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(c.Body(), &msg); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "malformed message")
		}
		if msg.Type != "" && msg.Type != "CHECK_NOW" {
			return fiber.NewError(fiber.StatusBadRequest, "unsupported message type")
		}
	}

	result, err := s.checker.CheckNow(c.Context())
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("manual check failed", "error", err)
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "data": nil, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "data": result})
}

func (s *Server) results(c fiber.Ctx) error {
	results, err := s.store.Results(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load results")
	}
	if results == nil {
		results = []domain.ClassificationResult{}
	}
	return c.JSON(fiber.Map{"success": true, "data": results})
}

func (s *Server) counts(c fiber.Ctx) error {
	counts, err := s.store.Counts(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load counts")
	}
	return c.JSON(fiber.Map{"success": true, "data": counts})
}

func (s *Server) exportCSV(c fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.store.ExportCSV(c.Context(), &buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "export failed")
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="listingscanner-results.csv"`)
	return c.Send(buf.Bytes())
}

func (s *Server) exportJSON(c fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.store.ExportJSON(c.Context(), &buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "export failed")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(buf.Bytes())
}
