package webapi

import (
	"time"

	"github.com/spboyer/stratafit/internal/models"
)

// CatalogInfo describes the snapshot that served a request.
type CatalogInfo struct {
	Source     string    `json:"source"`
	Version    string    `json:"version,omitempty"`
	LoadedAt   time.Time `json:"loaded_at"`
	Frameworks int       `json:"frameworks"`
}

// FrameworkSummary is one entry of the framework list.
type FrameworkSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Category         string `json:"category"`
	Subcategory      string `json:"subcategory,omitempty"`
	Complexity       string `json:"complexity,omitempty"`
	Tagged           bool   `json:"tagged"`
	HasEffectiveness bool   `json:"has_effectiveness"`
}

// FrameworksResponse is the framework list response.
type FrameworksResponse struct {
	Catalog    CatalogInfo        `json:"catalog"`
	Frameworks []FrameworkSummary `json:"frameworks"`
}

// FrameworkDetail is a framework with its tag profile and effectiveness
// record, when the catalog has them.
type FrameworkDetail struct {
	Framework     *models.FrameworkDefinition `json:"framework"`
	Profile       *models.TagProfile          `json:"profile,omitempty"`
	Effectiveness *models.EffectivenessRecord `json:"effectiveness,omitempty"`
}

// SelectRequest is the body of POST /api/select and POST /api/journey.
// Options left unset fall back to the server defaults.
type SelectRequest struct {
	Context models.StartupContext    `json:"context"`
	Options *models.SelectionOptions `json:"options,omitempty"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string      `json:"status"`
	Version string      `json:"version"`
	Catalog CatalogInfo `json:"catalog"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
