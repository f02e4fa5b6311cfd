package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// DocxExtractor pulls the plain text out of a .docx document and applies
// the delimited-text rule. A .docx is a zip of OOXML parts; the visible
// text lives in the <w:t> runs of word/document.xml, with <w:p> marking
// paragraph boundaries.
type DocxExtractor struct{}

func (e *DocxExtractor) Name() string { return "docx" }

func (e *DocxExtractor) CanExtract(ext string) bool {
	return ext == "docx"
}

func (e *DocxExtractor) Extract(data []byte) Result {
	text, err := docxPlainText(data)
	if err != nil {
		return Result{Warning: "could not read document; no names extracted"}
	}
	return Result{Names: SplitNames(text)}
}

func docxPlainText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", io.ErrUnexpectedEOF
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
