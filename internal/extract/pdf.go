package extract

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts plain text from a PDF best-effort and applies the
// delimited-text rule. PDF parsing of arbitrary uploads is the least
// reliable strategy in the registry, so every failure mode (including a
// parser panic on malformed input) degrades to an empty list with a
// warning instead of failing the upload.
type PDFExtractor struct{}

func (e *PDFExtractor) Name() string { return "pdf" }

func (e *PDFExtractor) CanExtract(ext string) bool {
	return ext == "pdf"
}

func (e *PDFExtractor) Extract(data []byte) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Warning: "could not read PDF; no names extracted"}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{Warning: "could not read PDF; no names extracted"}
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return Result{Warning: "could not read PDF; no names extracted"}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return Result{Warning: "could not read PDF; no names extracted"}
	}
	return Result{Names: SplitNames(buf.String())}
}
