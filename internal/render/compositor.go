// Package render draws a single name onto a copy of the template image.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/invitegen/backend/internal/models"
)

// Compositor renders text overlays onto template images. It is safe for
// concurrent use; parsed fonts and sized faces are cached.
type Compositor struct {
	fontsDir        string
	defaultWidth    int
	defaultHeight   int
	defaultFontSize float64
	defaultColor    string
	faces           *faceCache
}

// NewCompositor creates a compositor. fontsDir may contain user-supplied
// .ttf/.otf files addressed by font family; the embedded Go fonts are the
// fallback so rendering works with an empty directory.
func NewCompositor(fontsDir string, defaultWidth, defaultHeight int, defaultFontSize float64, defaultColor string) *Compositor {
	return &Compositor{
		fontsDir:        fontsDir,
		defaultWidth:    defaultWidth,
		defaultHeight:   defaultHeight,
		defaultFontSize: defaultFontSize,
		defaultColor:    defaultColor,
		faces:           newFaceCache(fontsDir),
	}
}

// Render composites spec.Text over the template at templatePath and returns
// the flattened image. An empty templatePath renders onto a white canvas of
// the configured default size; a template that exists but cannot be decoded
// is a rendering error.
func (c *Compositor) Render(templatePath string, spec models.OverlaySpec) (*image.NRGBA, error) {
	spec.ApplyDefaults(c.defaultFontSize, c.defaultColor)

	var canvas *image.NRGBA
	if templatePath == "" {
		canvas = imaging.New(c.defaultWidth, c.defaultHeight, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	} else {
		img, err := imaging.Open(templatePath)
		if err != nil {
			return nil, fmt.Errorf("decoding template: %w", err)
		}
		canvas = imaging.Clone(img)
	}

	face, err := c.faces.face(spec.FontFamily, spec.FontSize)
	if err != nil {
		return nil, fmt.Errorf("loading font %q: %w", spec.FontFamily, err)
	}

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(ParseColor(spec.Color)),
		Face: face,
		Dot:  fixed.P(spec.X, spec.Y),
	}
	d.DrawString(sanitizeText(spec.Text))

	return canvas, nil
}

// RenderToFile renders and writes the result to dst. The output format is
// taken from the destination extension (the engine always passes .png, the
// compositor's native format).
func (c *Compositor) RenderToFile(templatePath string, spec models.OverlaySpec, dst string) error {
	img, err := c.Render(templatePath, spec)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, dst); err != nil {
		return fmt.Errorf("writing rendered image: %w", err)
	}
	return nil
}

// sanitizeText strips control characters that glyph rendering cannot
// represent. There is no markup layer here, so nothing else needs escaping.
func sanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
