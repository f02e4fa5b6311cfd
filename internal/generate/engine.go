// Package generate drives the per-name composition loop and assembles the
// downloadable archive for one batch window.
package generate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/invitegen/backend/internal/archive"
	"github.com/invitegen/backend/internal/models"
	"github.com/invitegen/backend/internal/render"
)

// ArchiveFileName is the fixed archive name inside a session's working
// directory, overwritten on every generation call.
const ArchiveFileName = "invitations.zip"

// artifactsSubdir holds the per-batch rendered images inside the workdir.
const artifactsSubdir = "artifacts"

// ErrInvalidFormat is returned for output formats other than png/jpg.
var ErrInvalidFormat = errors.New("unsupported output format")

// Result summarizes one generation call.
type Result struct {
	Processed   int    `json:"processed"`
	Offset      int    `json:"offset"`
	Total       int    `json:"total"`
	ArchivePath string `json:"-"`
}

// Engine renders one artifact per name in the effective window and zips
// the lot. It holds no per-session state; callers serialize calls per
// session through the session manager.
type Engine struct {
	comp        *render.Compositor
	maxBatch    int
	jpegQuality int
}

// NewEngine creates a batch generation engine.
func NewEngine(comp *render.Compositor, maxBatch, jpegQuality int) *Engine {
	return &Engine{
		comp:        comp,
		maxBatch:    maxBatch,
		jpegQuality: jpegQuality,
	}
}

// NormalizeFormat maps user input to a canonical output format.
func NormalizeFormat(format string) (string, error) {
	switch format {
	case "", "png":
		return "png", nil
	case "jpg", "jpeg":
		return "jpg", nil
	}
	return "", ErrInvalidFormat
}

// ArchivePath returns the deterministic archive location for a session.
func ArchivePath(sess *models.Session) string {
	return filepath.Join(sess.WorkDir, ArchiveFileName)
}

// Generate renders every name in the clamped window onto the session's
// template and builds the archive. The artifacts directory is recreated
// fresh, so repeated calls overwrite rather than accumulate. Any rendering
// failure aborts the call; partial artifacts stay inside the session
// workdir, which is already registered for cleanup.
func (e *Engine) Generate(sess *models.Session, window models.BatchWindow, spec models.OverlaySpec, format string) (*Result, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}

	total := len(sess.Names)
	start, end := window.Clamp(total, e.maxBatch)
	fmt.Printf("[Generate %s] rendering %d of %d name(s), offset %d, format %s\n",
		shortID(sess.ID), end-start, total, start, format)

	outDir := filepath.Join(sess.WorkDir, artifactsSubdir)
	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("clearing artifact directory: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}

	for i := start; i < end; i++ {
		// Numbering is the absolute position in the full list, so a
		// batch starting at offset 50 begins at 051.
		name := sess.Names[i]
		final := filepath.Join(outDir, ArtifactFileName(i, name, format))

		spec.Text = name
		if err := e.renderArtifact(sess.TemplatePath, spec, final, format); err != nil {
			return nil, fmt.Errorf("rendering %q: %w", name, err)
		}
	}

	archivePath := ArchivePath(sess)
	if err := archive.BuildZip(outDir, archivePath); err != nil {
		return nil, fmt.Errorf("building archive: %w", err)
	}

	return &Result{
		Processed:   end - start,
		Offset:      start,
		Total:       total,
		ArchivePath: archivePath,
	}, nil
}

// renderArtifact writes one final artifact. PNG is the compositor's native
// format and goes straight to the destination; JPEG renders to a temporary
// PNG first, converts, and removes the temporary file even when the
// conversion fails.
func (e *Engine) renderArtifact(templatePath string, spec models.OverlaySpec, final, format string) error {
	if format == "png" {
		return e.comp.RenderToFile(templatePath, spec, final)
	}

	tmp := final + ".tmp.png"
	if err := e.comp.RenderToFile(templatePath, spec, tmp); err != nil {
		return err
	}
	defer os.Remove(tmp)

	img, err := imaging.Open(tmp)
	if err != nil {
		return fmt.Errorf("reading intermediate image: %w", err)
	}
	if err := imaging.Save(img, final, imaging.JPEGQuality(e.jpegQuality)); err != nil {
		return fmt.Errorf("converting to jpeg: %w", err)
	}
	return nil
}

// ArtifactFileName derives the artifact name for the name at absolute
// index i (0-based): a 1-based zero-padded index prefix guarantees
// uniqueness even when sanitized names collide.
func ArtifactFileName(i int, name, format string) string {
	return fmt.Sprintf("%03d-%s.%s", i+1, slugify(name), format)
}

// slugify replaces every character outside [A-Za-z0-9_-] with underscore.
func slugify(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '_', r == '-':
			out = append(out, byte(r))
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
