package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

type faceKey struct {
	family string
	size   float64
}

// faceCache resolves font families to sized faces. Lookup order: a
// .ttf/.otf file named after the family in the fonts directory, then the
// embedded Go fonts.
type faceCache struct {
	dir   string
	mu    sync.Mutex
	fonts map[string]*sfnt.Font
	faces map[faceKey]font.Face
}

func newFaceCache(dir string) *faceCache {
	return &faceCache{
		dir:   dir,
		fonts: make(map[string]*sfnt.Font),
		faces: make(map[faceKey]font.Face),
	}
}

func (fc *faceCache) face(family string, size float64) (font.Face, error) {
	family = strings.ToLower(strings.TrimSpace(family))

	fc.mu.Lock()
	defer fc.mu.Unlock()

	key := faceKey{family: family, size: size}
	if f, ok := fc.faces[key]; ok {
		return f, nil
	}

	fnt, err := fc.loadFontLocked(family)
	if err != nil {
		return nil, err
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face: %w", err)
	}

	fc.faces[key] = face
	return face, nil
}

func (fc *faceCache) loadFontLocked(family string) (*sfnt.Font, error) {
	if f, ok := fc.fonts[family]; ok {
		return f, nil
	}

	data := fc.readFontFile(family)
	if data == nil {
		data = builtinFont(family)
	}

	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	fc.fonts[family] = fnt
	return fnt, nil
}

// readFontFile looks for <family>.ttf or <family>.otf in the fonts dir.
// Any miss or read failure falls through to the builtin fonts.
func (fc *faceCache) readFontFile(family string) []byte {
	if fc.dir == "" || family == "" {
		return nil
	}
	// The family name came from a request; never let it escape the dir.
	base := filepath.Base(family)
	for _, ext := range []string{".ttf", ".otf"} {
		data, err := os.ReadFile(filepath.Join(fc.dir, base+ext))
		if err == nil {
			return data
		}
	}
	return nil
}

func builtinFont(family string) []byte {
	switch family {
	case "bold", "gobold":
		return gobold.TTF
	case "italic", "goitalic":
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}
