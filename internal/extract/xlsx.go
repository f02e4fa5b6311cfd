package extract

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SpreadsheetExtractor flattens all non-empty cells of an xlsx workbook,
// sheet by sheet in row-major order, into names.
type SpreadsheetExtractor struct{}

func (e *SpreadsheetExtractor) Name() string { return "spreadsheet" }

func (e *SpreadsheetExtractor) CanExtract(ext string) bool {
	return ext == "xlsx"
}

func (e *SpreadsheetExtractor) Extract(data []byte) Result {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Result{Warning: "could not read spreadsheet; no names extracted"}
	}
	defer f.Close()

	var names []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, cell := range row {
				if v := strings.TrimSpace(cell); v != "" {
					names = append(names, v)
				}
			}
		}
	}
	return Result{Names: names}
}
