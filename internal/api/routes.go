// routes.go - Route registration
package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.HTTPErrorHandler = ErrorHandler

	api := e.Group("/api")

	api.GET("/health", h.HandleHealth)
	api.GET("/presets", h.HandleGetPresets)

	api.POST("/upload", h.HandleUpload)

	api.GET("/sessions/:id", h.HandleGetSession)
	api.GET("/sessions/:id/names", h.HandleGetNames)
	api.GET("/sessions/:id/names/msgpack", h.HandleGetNamesMsgpack)
	api.DELETE("/sessions/:id", h.HandleDeleteSession)

	api.POST("/preview", h.HandlePreview)
	api.POST("/generate", h.HandleGenerate)
	api.GET("/download/:id", h.HandleDownload)
}
