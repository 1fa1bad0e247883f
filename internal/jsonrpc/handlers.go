package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/spboyer/stratafit/internal/catalog"
	"github.com/spboyer/stratafit/internal/history"
	"github.com/spboyer/stratafit/internal/journey"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/recommend"
)

// SnapshotSource supplies the catalog snapshot for a call.
type SnapshotSource interface {
	Current() *catalog.Snapshot
}

// HistoryStore records and reads back selection runs. *history.Store
// satisfies it.
type HistoryStore interface {
	Record(ctx context.Context, run *history.Run) error
	Get(ctx context.Context, id string) (*history.Run, error)
	List(ctx context.Context, limit int) ([]history.Run, error)
}

// HandlerConfig configures the method handlers.
type HandlerConfig struct {
	Source   SnapshotSource
	Defaults models.SelectionOptions
	// History is optional. When nil, selections are not recorded and the
	// history methods are not registered.
	History HistoryStore
	Logger  *slog.Logger
}

// HandlerContext provides shared state for method handlers.
type HandlerContext struct {
	source   SnapshotSource
	engine   *recommend.Engine
	defaults models.SelectionOptions
	history  HistoryStore
	logger   *slog.Logger
}

// CatalogReloaded builds the notification for a reload attempt. current is
// the snapshot still serving, which is snap unless the reload failed.
func CatalogReloaded(current *catalog.Snapshot, err error) *Notification {
	meta := current.Meta()
	params := CatalogReloadedParams{
		Source:     meta.Source,
		Version:    meta.Version,
		Frameworks: current.Len(),
	}
	if err != nil {
		params.Error = err.Error()
	}
	return &Notification{JSONRPC: version, Method: MethodCatalogReloaded, Params: params}
}

// NewHandlerContext creates a new handler context.
func NewHandlerContext(cfg HandlerConfig) *HandlerContext {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HandlerContext{
		source:   cfg.Source,
		engine:   recommend.NewEngine(logger),
		defaults: cfg.Defaults,
		history:  cfg.History,
		logger:   logger,
	}
}

// RegisterHandlers registers all catalog/select/journey method handlers.
func RegisterHandlers(registry *MethodRegistry, hctx *HandlerContext) {
	registry.Register("catalog.list", hctx.handleCatalogList)
	registry.Register("catalog.get", hctx.handleCatalogGet)
	registry.Register("catalog.validate", hctx.handleCatalogValidate)
	registry.Register("select.run", hctx.handleSelectRun)
	registry.Register("journey.build", hctx.handleJourneyBuild)
	if hctx.history != nil {
		registry.Register("history.list", hctx.handleHistoryList)
		registry.Register("history.get", hctx.handleHistoryGet)
	}
}

// decodeParams unmarshals params into v. Absent params leave v zero.
func decodeParams(params json.RawMessage, v any) *Error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return ErrInvalidParams(err.Error())
	}
	return nil
}

// --- catalog.list ---

type CatalogListParams struct {
	Category string `json:"category,omitempty"`
}

type CatalogListResult struct {
	Source     string             `json:"source"`
	Version    string             `json:"version,omitempty"`
	Frameworks []FrameworkSummary `json:"frameworks"`
}

type FrameworkSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Tagged   bool   `json:"tagged"`
}

func (h *HandlerContext) handleCatalogList(_ context.Context, params json.RawMessage) (any, *Error) {
	var p CatalogListParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	snap := h.source.Current()
	meta := snap.Meta()
	result := &CatalogListResult{Source: meta.Source, Version: meta.Version, Frameworks: []FrameworkSummary{}}
	for _, def := range snap.Frameworks() {
		if p.Category != "" && string(def.Category) != p.Category {
			continue
		}
		_, tagged := snap.Profile(def.ID)
		result.Frameworks = append(result.Frameworks, FrameworkSummary{
			ID:       def.ID,
			Name:     def.Name,
			Category: string(def.Category),
			Tagged:   tagged,
		})
	}
	return result, nil
}

// --- catalog.get ---

type CatalogGetParams struct {
	ID string `json:"id"`
}

type CatalogGetResult struct {
	Framework     *models.FrameworkDefinition `json:"framework"`
	Profile       *models.TagProfile          `json:"profile,omitempty"`
	Effectiveness *models.EffectivenessRecord `json:"effectiveness,omitempty"`
}

func (h *HandlerContext) handleCatalogGet(_ context.Context, params json.RawMessage) (any, *Error) {
	var p CatalogGetParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, ErrInvalidParams("id is required")
	}

	snap := h.source.Current()
	def, err := snap.Framework(p.ID)
	if errors.Is(err, catalog.ErrFrameworkNotFound) {
		return nil, ErrFrameworkNotFound(p.ID)
	}
	if err != nil {
		return nil, ErrInternalError(err.Error())
	}
	result := &CatalogGetResult{Framework: def}
	if tp, ok := snap.Profile(p.ID); ok {
		result.Profile = tp
	}
	if rec, ok := snap.Effectiveness(p.ID); ok {
		result.Effectiveness = rec
	}
	return result, nil
}

// --- catalog.validate ---

type CatalogValidateParams struct {
	Path string `json:"path"`
}

type CatalogValidateResult struct {
	Valid      bool     `json:"valid"`
	Frameworks int      `json:"frameworks"`
	Problems   []string `json:"problems,omitempty"`
}

// handleCatalogValidate loads a catalog directory, file or bundle without
// installing it. Integrity problems are a result, not an error.
func (h *HandlerContext) handleCatalogValidate(_ context.Context, params json.RawMessage) (any, *Error) {
	var p CatalogValidateParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Path == "" {
		return nil, ErrInvalidParams("path is required")
	}

	snap, err := catalog.Load(p.Path)
	if err != nil {
		var ie *catalog.IntegrityError
		if errors.As(err, &ie) {
			return &CatalogValidateResult{Valid: false, Problems: ie.Problems}, nil
		}
		return nil, ErrValidationFailed(err.Error())
	}
	return &CatalogValidateResult{Valid: true, Frameworks: snap.Len()}, nil
}

// --- select.run / journey.build ---

type SelectParams struct {
	Context models.StartupContext    `json:"context"`
	Options *models.SelectionOptions `json:"options,omitempty"`
}

func (h *HandlerContext) handleSelectRun(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p SelectParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	snap := h.source.Current()
	res := h.engine.Select(snap, p.Context, h.defaults.Merge(p.Options))
	if res.Status == models.StatusInvalidInput {
		return nil, ErrInvalidInput(res)
	}
	h.record(ctx, func() (*history.Run, error) {
		return history.FromSelection("rpc", snap.Meta().Version, p.Context, res)
	})
	return res, nil
}

func (h *HandlerContext) handleJourneyBuild(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p SelectParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	snap := h.source.Current()
	j := journey.Build(h.engine, snap, p.Context, h.defaults.Merge(p.Options))
	if j.Status == models.StatusInvalidInput {
		return nil, ErrInvalidInput(j)
	}
	h.record(ctx, func() (*history.Run, error) {
		return history.FromJourney("rpc", snap.Meta().Version, p.Context, j)
	})
	return j, nil
}

func (h *HandlerContext) record(ctx context.Context, build func() (*history.Run, error)) {
	if h.history == nil {
		return
	}
	run, err := build()
	if err == nil {
		err = h.history.Record(ctx, run)
	}
	if err != nil {
		h.logger.Warn("failed to record selection run", "error", err)
	}
}

// --- history.list / history.get ---

type HistoryListParams struct {
	Limit int `json:"limit,omitempty"`
}

type HistoryListResult struct {
	Runs []history.Run `json:"runs"`
}

func (h *HandlerContext) handleHistoryList(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p HistoryListParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Limit < 0 {
		return nil, ErrInvalidParams("limit must not be negative")
	}
	runs, err := h.history.List(ctx, p.Limit)
	if err != nil {
		return nil, ErrInternalError(err.Error())
	}
	if runs == nil {
		runs = []history.Run{}
	}
	return &HistoryListResult{Runs: runs}, nil
}

type HistoryGetParams struct {
	ID string `json:"id"`
}

func (h *HandlerContext) handleHistoryGet(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p HistoryGetParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, ErrInvalidParams("id is required")
	}
	run, err := h.history.Get(ctx, p.ID)
	if errors.Is(err, history.ErrNotFound) {
		return nil, ErrInvalidParams(err.Error())
	}
	if err != nil {
		return nil, ErrInternalError(err.Error())
	}
	return run, nil
}
