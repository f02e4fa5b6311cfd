package extract

import "unicode/utf8"

// TextExtractor handles delimited plain text. It also serves as the
// fallback for unknown file kinds: anything that decodes as text is split
// on the standard delimiters, anything else degrades to an empty list.
type TextExtractor struct{}

func (e *TextExtractor) Name() string { return "text" }

func (e *TextExtractor) CanExtract(ext string) bool {
	switch ext {
	case "txt", "csv", "text", "":
		return true
	}
	return false
}

func (e *TextExtractor) Extract(data []byte) Result {
	if !utf8.Valid(data) {
		return Result{Warning: "file is not valid text; no names extracted"}
	}
	return Result{Names: SplitNames(string(data))}
}
