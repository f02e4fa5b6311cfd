// handlers_upload.go - Template + guest list upload
package api

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/invitegen/backend/internal/models"
)

type uploadResponse struct {
	SessionID string   `json:"sessionId"`
	Total     int      `json:"total"`
	Names     []string `json:"names"`
	Warning   string   `json:"warning,omitempty"`
}

// HandleUpload accepts a multipart upload with a "template" image and a
// "list" document, creates a session, and extracts the names. Both stored
// files are registered for cleanup before extraction runs, so an
// extraction failure still ends in a clean filesystem.
func (h *Handler) HandleUpload(c echo.Context) error {
	templateFH, err := c.FormFile("template")
	if err != nil {
		return NewValidationError("template")
	}
	listFH, err := c.FormFile("list")
	if err != nil {
		return NewValidationError("list")
	}

	sess, err := h.sessions.Create()
	if err != nil {
		return NewInternalError("could not create session", err)
	}

	templateInfo, err := h.saveUpload(templateFH)
	if err != nil {
		h.sessions.Destroy(sess.ID)
		return NewInternalError("could not store template", err)
	}
	h.sessions.RegisterCleanup(sess.ID, templateInfo.Path)

	listInfo, err := h.saveUpload(listFH)
	if err != nil {
		h.sessions.Destroy(sess.ID)
		return NewInternalError("could not store guest list", err)
	}
	h.sessions.RegisterCleanup(sess.ID, listInfo.Path)

	result, err := h.extractor.ExtractFile(listInfo.Path, listInfo.Ext)
	if err != nil {
		h.sessions.Destroy(sess.ID)
		return NewBadRequestError("could not read the guest list file")
	}

	sess.TemplatePath = templateInfo.Path
	sess.ListPath = listInfo.Path
	sess.Names = result.Names
	sess.Warning = result.Warning

	return c.JSON(http.StatusCreated, uploadResponse{
		SessionID: sess.ID,
		Total:     len(sess.Names),
		Names:     firstN(sess.Names, namePreviewCount),
		Warning:   result.Warning,
	})
}

func (h *Handler) saveUpload(fh *multipart.FileHeader) (*models.FileInfo, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return h.store.Save(fh.Filename, src)
}

func firstN(names []string, n int) []string {
	if names == nil {
		return []string{}
	}
	if len(names) > n {
		return names[:n]
	}
	return names
}
