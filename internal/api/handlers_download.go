// handlers_download.go - Archive download and session teardown
package api

import (
	"os"

	"github.com/labstack/echo/v4"

	"github.com/invitegen/backend/internal/generate"
)

// HandleDownload serves the session's archive and destroys the session
// after the transfer attempt, success or failure, exactly once. A repeat
// request therefore sees the session as gone.
func (h *Handler) HandleDownload(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	archivePath := generate.ArchivePath(sess)
	if _, err := os.Stat(archivePath); err != nil {
		return NewNotFoundError("archive for session", id)
	}

	defer h.sessions.Destroy(id)
	return c.Attachment(archivePath, generate.ArchiveFileName)
}
