// handlers_test.go - API surface tests over real components
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/invitegen/backend/internal/extract"
	"github.com/invitegen/backend/internal/generate"
	"github.com/invitegen/backend/internal/render"
	"github.com/invitegen/backend/internal/session"
	"github.com/invitegen/backend/internal/storage"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	base := t.TempDir()

	store, err := storage.NewLocalStore(filepath.Join(base, "uploads"))
	require.NoError(t, err)

	sessions := session.NewManager(filepath.Join(base, "sessions"), 10)
	comp := render.NewCompositor("", 800, 600, 48, "black")
	engine := generate.NewEngine(comp, 100, 90)

	return NewHandler(sessions, store, extract.NewRegistry(), comp, engine, nil, "test")
}

func templatePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(200, 120, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

type uploadPart struct {
	field    string
	filename string
	content  []byte
}

func newUploadContext(t *testing.T, e *echo.Echo, parts []uploadPart) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		w, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = w.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func uploadSession(t *testing.T, e *echo.Echo, h *Handler, list string) uploadResponse {
	t.Helper()
	c, rec := newUploadContext(t, e, []uploadPart{
		{"template", "template.png", templatePNG(t)},
		{"list", "guests.txt", []byte(list)},
	})
	require.NoError(t, h.HandleUpload(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func jsonContext(e *echo.Echo, method, target string, payload any) (echo.Context, *httptest.ResponseRecorder) {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandleUpload(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	resp := uploadSession(t, e, h, "Alice\nBob\n,  ,\nListe")
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"Alice", "Bob"}, resp.Names)
	assert.Empty(t, resp.Warning)

	sess, ok := h.sessions.Get(resp.SessionID)
	require.True(t, ok)
	assert.True(t, sess.Ready())
	// Template, list and workdir are all registered before extraction ran.
	assert.GreaterOrEqual(t, len(sess.CleanupPaths), 3)
}

func TestHandleUploadMissingParts(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	c, _ := newUploadContext(t, e, []uploadPart{
		{"template", "template.png", templatePNG(t)},
	})
	err := h.HandleUpload(c)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Equal(t, 0, h.sessions.Count())
}

func TestHandlePreview(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	resp := uploadSession(t, e, h, "Alice\nBob")

	c, rec := jsonContext(e, http.MethodPost, "/api/preview", previewRequest{
		SessionID: resp.SessionID,
		X:         20,
		Y:         70,
		FontSize:  32,
		Color:     "#336699",
	})
	require.NoError(t, h.HandlePreview(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestHandlePreviewUnknownSession(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	c, _ := jsonContext(e, http.MethodPost, "/api/preview", previewRequest{SessionID: "nope"})
	err := h.HandlePreview(c)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestHandleGenerateAndDownload(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	resp := uploadSession(t, e, h, "Alice;Bob;Carol")

	c, rec := jsonContext(e, http.MethodPost, "/api/generate", generateRequest{
		SessionID: resp.SessionID,
		X:         20,
		Y:         70,
		FontSize:  24,
		Format:    "png",
	})
	require.NoError(t, h.HandleGenerate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var genResp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &genResp))
	assert.Equal(t, 3, genResp.Processed)
	assert.Equal(t, 0, genResp.Offset)
	assert.Equal(t, 3, genResp.Total)
	assert.Equal(t, "/api/download/"+resp.SessionID, genResp.Archive)

	// Download serves the zip and tears the session down exactly once.
	req := httptest.NewRequest(http.MethodGet, genResp.Archive, nil)
	dlRec := httptest.NewRecorder()
	dlCtx := e.NewContext(req, dlRec)
	dlCtx.SetParamNames("id")
	dlCtx.SetParamValues(resp.SessionID)
	require.NoError(t, h.HandleDownload(dlCtx))
	assert.Equal(t, http.StatusOK, dlRec.Code)
	assert.NotZero(t, dlRec.Body.Len())

	_, ok := h.sessions.Get(resp.SessionID)
	assert.False(t, ok, "session must be destroyed after download")

	// A second download finds nothing.
	req2 := httptest.NewRequest(http.MethodGet, genResp.Archive, nil)
	rec2 := httptest.NewRecorder()
	ctx2 := e.NewContext(req2, rec2)
	ctx2.SetParamNames("id")
	ctx2.SetParamValues(resp.SessionID)
	err := h.HandleDownload(ctx2)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, err.(*APIError).Status)
}

// brokenWriter fails every body write, simulating a client that
// disconnected mid-transfer.
type brokenWriter struct {
	http.ResponseWriter
}

func (w *brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestHandleDownloadDestroysSessionOnFailedTransfer(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	resp := uploadSession(t, e, h, "Alice")

	c, _ := jsonContext(e, http.MethodPost, "/api/generate", generateRequest{
		SessionID: resp.SessionID,
		Format:    "png",
	})
	require.NoError(t, h.HandleGenerate(c))

	req := httptest.NewRequest(http.MethodGet, "/api/download/"+resp.SessionID, nil)
	rec := httptest.NewRecorder()
	dlCtx := e.NewContext(req, &brokenWriter{ResponseWriter: rec})
	dlCtx.SetParamNames("id")
	dlCtx.SetParamValues(resp.SessionID)
	// The write failure may or may not surface as a handler error;
	// teardown must happen either way.
	_ = h.HandleDownload(dlCtx)

	_, ok := h.sessions.Get(resp.SessionID)
	assert.False(t, ok, "session must be destroyed after a failed transfer")
}

func TestHandleGenerateValidation(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	resp := uploadSession(t, e, h, "Alice")

	tests := []struct {
		name     string
		request  generateRequest
		wantCode string
		want     int
	}{
		{
			name:     "unknown session",
			request:  generateRequest{SessionID: "missing", Format: "png"},
			wantCode: "NOT_FOUND",
			want:     http.StatusNotFound,
		},
		{
			name:     "bad format",
			request:  generateRequest{SessionID: resp.SessionID, Format: "gif"},
			wantCode: "VALIDATION_ERROR",
			want:     http.StatusBadRequest,
		},
		{
			name:     "negative offset",
			request:  generateRequest{SessionID: resp.SessionID, Format: "png", Offset: -1},
			wantCode: "VALIDATION_ERROR",
			want:     http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := jsonContext(e, http.MethodPost, "/api/generate", tt.request)
			err := h.HandleGenerate(c)
			require.Error(t, err)
			apiErr, ok := err.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.want, apiErr.Status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestHandleGenerateConflict(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	resp := uploadSession(t, e, h, "Alice")

	require.NoError(t, h.sessions.BeginGeneration(resp.SessionID))
	defer h.sessions.EndGeneration(resp.SessionID)

	c, _ := jsonContext(e, http.MethodPost, "/api/generate", generateRequest{
		SessionID: resp.SessionID,
		Format:    "png",
	})
	err := h.HandleGenerate(c)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "CONFLICT", apiErr.Code)
}

func TestHandleDeleteSessionDuringGeneration(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	resp := uploadSession(t, e, h, "Alice")

	require.NoError(t, h.sessions.BeginGeneration(resp.SessionID))
	defer h.sessions.EndGeneration(resp.SessionID)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(resp.SessionID)
	err := h.HandleDeleteSession(c)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	_, stillThere := h.sessions.Get(resp.SessionID)
	assert.True(t, stillThere, "session must survive a delete during generation")
}

func TestHandleGetNamesPaging(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	resp := uploadSession(t, e, h, strings.Join([]string{"A", "B", "C", "D", "E"}, "\n"))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/x/names?offset=2&limit=2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(resp.SessionID)
	require.NoError(t, h.HandleGetNames(c))

	var page namesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Offset)
	assert.Equal(t, []string{"C", "D"}, page.Names)
}

func TestHandleGetNamesMsgpack(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	resp := uploadSession(t, e, h, "Alice\nBob")

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/x/names/msgpack", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(resp.SessionID)
	require.NoError(t, h.HandleGetNamesMsgpack(c))
	assert.Equal(t, "application/x-msgpack", rec.Header().Get(echo.HeaderContentType))

	var decoded namesResponse
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, []string{"Alice", "Bob"}, decoded.Names)
	assert.Equal(t, 2, decoded.Total)
}

func TestHandleDeleteSession(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	resp := uploadSession(t, e, h, "Alice")

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(resp.SessionID)
	require.NoError(t, h.HandleDeleteSession(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, ok := h.sessions.Get(resp.SessionID)
	assert.False(t, ok)
}

func TestHandleHealth(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.HandleHealth(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
