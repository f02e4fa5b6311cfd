// handlers_generate.go - Preview and batch generation
package api

import (
	"bytes"
	"errors"
	"image/png"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/invitegen/backend/internal/generate"
	"github.com/invitegen/backend/internal/models"
	"github.com/invitegen/backend/internal/session"
)

type previewRequest struct {
	SessionID  string  `json:"sessionId"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Color      string  `json:"color"`
	Name       string  `json:"name"`
}

type generateRequest struct {
	SessionID  string  `json:"sessionId"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Color      string  `json:"color"`
	Format     string  `json:"format"`
	Offset     int     `json:"offset"`
	Limit      int     `json:"limit"`
}

type generateResponse struct {
	Processed int    `json:"processed"`
	Offset    int    `json:"offset"`
	Total     int    `json:"total"`
	Archive   string `json:"archive"`
}

// HandlePreview renders a single name with the requested overlay and
// returns the PNG bytes. The name defaults to the first extracted one.
func (h *Handler) HandlePreview(c echo.Context) error {
	var req previewRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body")
	}

	sess, ok := h.sessions.Get(req.SessionID)
	if !ok {
		return NewNotFoundError("session", req.SessionID)
	}
	if sess.TemplatePath == "" {
		return NewBadRequestError("session has no template image")
	}

	text := req.Name
	if text == "" {
		if len(sess.Names) == 0 {
			return NewBadRequestError("no names extracted; provide a name for the preview")
		}
		text = sess.Names[0]
	}

	spec := models.OverlaySpec{
		X:          req.X,
		Y:          req.Y,
		FontFamily: req.FontFamily,
		FontSize:   req.FontSize,
		Color:      req.Color,
		Text:       text,
	}
	img, err := h.compositor.Render(sess.TemplatePath, spec)
	if err != nil {
		return NewInternalError("could not render the preview", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return NewInternalError("could not encode the preview", err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// HandleGenerate runs one batch generation call for a session. Concurrent
// calls for the same session are rejected; repeating a call overwrites the
// previous artifacts and archive.
func (h *Handler) HandleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body")
	}

	sess, ok := h.sessions.Get(req.SessionID)
	if !ok {
		return NewNotFoundError("session", req.SessionID)
	}
	if sess.TemplatePath == "" {
		return NewBadRequestError("session has no template image")
	}
	if len(sess.Names) == 0 {
		return NewBadRequestError("session has no extracted names")
	}
	if _, err := generate.NormalizeFormat(req.Format); err != nil {
		return NewValidationError("format")
	}
	if req.Offset < 0 {
		return NewValidationError("offset")
	}

	if err := h.sessions.BeginGeneration(req.SessionID); err != nil {
		if errors.Is(err, session.ErrBusy) {
			return NewConflictError("a generation for this session is already running")
		}
		return NewNotFoundError("session", req.SessionID)
	}
	defer h.sessions.EndGeneration(req.SessionID)

	spec := models.OverlaySpec{
		X:          req.X,
		Y:          req.Y,
		FontFamily: req.FontFamily,
		FontSize:   req.FontSize,
		Color:      req.Color,
	}
	window := models.BatchWindow{Offset: req.Offset, Limit: req.Limit}

	result, err := h.engine.Generate(sess, window, spec, req.Format)
	if err != nil {
		return NewInternalError("generation failed", err)
	}

	return c.JSON(http.StatusOK, generateResponse{
		Processed: result.Processed,
		Offset:    result.Offset,
		Total:     result.Total,
		Archive:   "/api/download/" + sess.ID,
	})
}
