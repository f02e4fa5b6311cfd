// handlers_session.go - Session inspection and teardown
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/invitegen/backend/internal/session"
)

type sessionResponse struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"createdAt"`
	Total       int    `json:"total"`
	HasTemplate bool   `json:"hasTemplate"`
	Warning     string `json:"warning,omitempty"`
}

type namesResponse struct {
	SessionID string   `json:"sessionId"`
	Offset    int      `json:"offset"`
	Total     int      `json:"total"`
	Names     []string `json:"names"`
}

// HandleGetSession returns a session summary.
func (h *Handler) HandleGetSession(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, sessionResponse{
		ID:          sess.ID,
		CreatedAt:   sess.CreatedAt.UTC().Format(time.RFC3339),
		Total:       len(sess.Names),
		HasTemplate: sess.TemplatePath != "",
		Warning:     sess.Warning,
	})
}

// HandleGetNames returns one page of extracted names.
func (h *Handler) HandleGetNames(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 50)
	if offset < 0 || limit <= 0 {
		return NewValidationError("offset/limit")
	}

	total := len(sess.Names)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, namesResponse{
		SessionID: sess.ID,
		Offset:    offset,
		Total:     total,
		Names:     append([]string{}, sess.Names[offset:end]...),
	})
}

// HandleGetNamesMsgpack returns the full name list MessagePack-encoded,
// for clients paging through large guest lists.
func (h *Handler) HandleGetNamesMsgpack(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	payload, err := msgpack.Marshal(namesResponse{
		SessionID: sess.ID,
		Total:     len(sess.Names),
		Names:     sess.Names,
	})
	if err != nil {
		return NewInternalError("could not encode names", err)
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", payload)
}

// HandleDeleteSession explicitly invalidates a session, removing all of
// its registered filesystem paths. A session with a generation in flight
// cannot be deleted out from under the renderer.
func (h *Handler) HandleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	if err := h.sessions.Destroy(id); err != nil {
		if errors.Is(err, session.ErrBusy) {
			return NewConflictError("a generation for this session is already running")
		}
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}
