package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spboyer/stratafit/internal/catalog"
	"github.com/spboyer/stratafit/internal/history"
	"github.com/spboyer/stratafit/internal/journey"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/recommend"
	"github.com/spboyer/stratafit/internal/reporting"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0-dev"

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// Output formats accepted by POST /api/select.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

//go:generate go tool mockgen -destination=mock_source_test.go -package=webapi . SnapshotSource

// SnapshotSource supplies the catalog snapshot for a request.
// *catalog.Store satisfies it.
type SnapshotSource interface {
	Current() *catalog.Snapshot
}

// Recorder persists selection runs. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run *history.Run) error
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	source   SnapshotSource
	engine   *recommend.Engine
	defaults models.SelectionOptions
	recorder Recorder
	logger   *slog.Logger
}

// Option configures Handlers.
type Option func(*Handlers)

// WithDefaults sets the selection options used when a request leaves them unset.
func WithDefaults(opts models.SelectionOptions) Option {
	return func(h *Handlers) { h.defaults = opts }
}

// WithRecorder records every selection and journey.
func WithRecorder(r Recorder) Option {
	return func(h *Handlers) { h.recorder = r }
}

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handlers) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandlers creates Handlers serving snapshots from source.
func NewHandlers(source SnapshotSource, opts ...Option) *Handlers {
	h := &Handlers{source: source, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	h.engine = recommend.NewEngine(h.logger)
	return h
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
		Catalog: catalogInfo(h.source.Current()),
	})
}

// HandleFrameworks lists every framework in the current catalog.
func (h *Handlers) HandleFrameworks(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Current()
	category := r.URL.Query().Get("category")

	resp := FrameworksResponse{Catalog: catalogInfo(snap), Frameworks: []FrameworkSummary{}}
	for _, def := range snap.Frameworks() {
		if category != "" && string(def.Category) != category {
			continue
		}
		_, tagged := snap.Profile(def.ID)
		_, measured := snap.Effectiveness(def.ID)
		resp.Frameworks = append(resp.Frameworks, FrameworkSummary{
			ID:               def.ID,
			Name:             def.Name,
			Category:         string(def.Category),
			Subcategory:      def.Subcategory,
			Complexity:       string(def.Complexity),
			Tagged:           tagged,
			HasEffectiveness: measured,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleFramework returns one framework with its profile and effectiveness data.
func (h *Handlers) HandleFramework(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "framework id is required")
		return
	}

	snap := h.source.Current()
	def, err := snap.Framework(id)
	if err != nil {
		if errors.Is(err, catalog.ErrFrameworkNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	detail := FrameworkDetail{Framework: def}
	if tp, ok := snap.Profile(id); ok {
		detail.Profile = tp
	}
	if rec, ok := snap.Effectiveness(id); ok {
		detail.Effectiveness = rec
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleSelect runs a selection. The format query parameter picks JSON
// (default), Markdown or HTML output.
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatMarkdown && format != FormatHTML {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q; use json, markdown or html", format))
		return
	}

	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	snap := h.source.Current()
	res := h.engine.Select(snap, req.Context, h.defaults.Merge(req.Options))
	h.record(r.Context(), snap, func(version string) (*history.Run, error) {
		return history.FromSelection("http", version, req.Context, res)
	})

	status := statusFor(res.Status)
	switch format {
	case FormatMarkdown:
		writeText(w, status, "text/markdown; charset=utf-8", reporting.Markdown(res, reporting.MarkdownOptions{}))
	case FormatHTML:
		html, err := reporting.HTML(reporting.Markdown(res, reporting.MarkdownOptions{}))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeText(w, status, "text/html; charset=utf-8", html)
	default:
		writeJSON(w, status, res)
	}
}

// HandleJourney builds a phased framework journey.
func (h *Handlers) HandleJourney(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	snap := h.source.Current()
	j := journey.Build(h.engine, snap, req.Context, h.defaults.Merge(req.Options))
	h.record(r.Context(), snap, func(version string) (*history.Run, error) {
		return history.FromJourney("http", version, req.Context, j)
	})
	writeJSON(w, statusFor(j.Status), j)
}

// record stores a run when a recorder is configured. Failures are logged and
// never fail the request.
func (h *Handlers) record(ctx context.Context, snap *catalog.Snapshot, build func(version string) (*history.Run, error)) {
	if h.recorder == nil {
		return
	}
	run, err := build(snap.Meta().Version)
	if err == nil {
		err = h.recorder.Record(ctx, run)
	}
	if err != nil {
		h.logger.Warn("failed to record selection run", "error", err)
	}
}

// RegisterRoutes registers all web API routes on r.
func RegisterRoutes(r chi.Router, h *Handlers) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Get("/frameworks", h.HandleFrameworks)
		r.Get("/frameworks/{id}", h.HandleFramework)
		r.Post("/select", h.HandleSelect)
		r.Post("/journey", h.HandleJourney)
	})
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(allowedOrigins ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (SelectRequest, bool) {
	var req SelectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "request body is empty")
		} else {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		}
		return req, false
	}
	return req, true
}

// statusFor maps a selection outcome to an HTTP status. Only input errors are
// client errors; an empty shortlist is a valid answer.
func statusFor(s models.SelectionStatus) int {
	if s == models.StatusInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

func catalogInfo(snap *catalog.Snapshot) CatalogInfo {
	meta := snap.Meta()
	return CatalogInfo{
		Source:     meta.Source,
		Version:    meta.Version,
		LoadedAt:   meta.LoadedAt,
		Frameworks: snap.Len(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeText(w http.ResponseWriter, status int, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	io.WriteString(w, body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
