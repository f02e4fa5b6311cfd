// handlers.go - Handler wiring shared across the API surface
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/invitegen/backend/internal/config"
	"github.com/invitegen/backend/internal/extract"
	"github.com/invitegen/backend/internal/generate"
	"github.com/invitegen/backend/internal/render"
	"github.com/invitegen/backend/internal/session"
	"github.com/invitegen/backend/internal/storage"
)

// namePreviewCount is how many extracted names the upload response carries;
// the rest are available through the names endpoints.
const namePreviewCount = 20

// Handler carries the dependencies of all API handlers.
type Handler struct {
	sessions   *session.Manager
	store      storage.Store
	extractor  *extract.Registry
	compositor *render.Compositor
	engine     *generate.Engine
	presets    []config.StylePreset
	version    string
}

// NewHandler creates the API handler set.
func NewHandler(sessions *session.Manager, store storage.Store, extractor *extract.Registry,
	compositor *render.Compositor, engine *generate.Engine, presets []config.StylePreset, version string) *Handler {
	return &Handler{
		sessions:   sessions,
		store:      store,
		extractor:  extractor,
		compositor: compositor,
		engine:     engine,
		presets:    presets,
		version:    version,
	}
}

// HandleHealth reports service liveness.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

// HandleGetPresets returns the configured overlay style presets.
func (h *Handler) HandleGetPresets(c echo.Context) error {
	presets := h.presets
	if presets == nil {
		presets = []config.StylePreset{}
	}
	return c.JSON(http.StatusOK, presets)
}
