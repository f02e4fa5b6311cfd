// Package extract turns heterogeneous uploaded documents (plain text,
// spreadsheets, rich text, PDF) into an ordered list of display names.
package extract

import (
	"fmt"
	"os"
	"strings"
)

// Result is the outcome of one extraction. Warning is set when a strategy
// degraded (e.g. an unparseable PDF yielding zero names) instead of failing
// the request; a hard error is reserved for an unreadable source file.
type Result struct {
	Names   []string
	Warning string
}

// Extractor converts raw document bytes into names. Extract never fails:
// a strategy that cannot make sense of its input reports the degradation
// through Result.Warning and returns an empty name list.
type Extractor interface {
	Name() string
	CanExtract(ext string) bool
	Extract(data []byte) Result
}

// Registry holds all available extractors and dispatches by file extension.
type Registry struct {
	extractors []Extractor
}

// NewRegistry returns a registry with all built-in extractors.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []Extractor{
			&TextExtractor{},
			&SpreadsheetExtractor{},
			&DocxExtractor{},
			&PDFExtractor{},
		},
	}
}

// Register adds an extractor. Later registrations take precedence so a
// caller can override a built-in strategy.
func (r *Registry) Register(e Extractor) {
	r.extractors = append([]Extractor{e}, r.extractors...)
}

// Find returns the extractor for a normalized extension, falling back to
// the plain-text strategy for unknown kinds.
func (r *Registry) Find(ext string) Extractor {
	ext = NormalizeExt(ext)
	for _, e := range r.extractors {
		if e.CanExtract(ext) {
			return e
		}
	}
	return &TextExtractor{}
}

// ExtractFile reads the document at path and extracts names using the
// strategy for the declared extension. The only fatal condition is a source
// that cannot be read at all; content-level failures degrade via Warning.
func (r *Registry) ExtractFile(path, ext string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading list file: %w", err)
	}
	return r.Find(ext).Extract(data), nil
}

// NormalizeExt lowercases an extension and strips a leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// headerDenylist holds placeholder tokens that show up as column headers or
// list titles in real guest lists; they are never names.
var headerDenylist = map[string]struct{}{
	"name":     {},
	"names":    {},
	"liste":    {},
	"list":     {},
	"namen":    {},
	"vorname":  {},
	"nachname": {},
	"gast":     {},
	"guest":    {},
	"guests":   {},
}

// SplitNames applies the delimited-text rule: split on newline, semicolon
// or comma, trim, drop empties and denylisted header tokens. Order is
// preserved and duplicates are kept.
func SplitNames(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ';' || r == ','
	})

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f)
		if name == "" {
			continue
		}
		if _, denied := headerDenylist[strings.ToLower(name)]; denied {
			continue
		}
		names = append(names, name)
	}
	return names
}
