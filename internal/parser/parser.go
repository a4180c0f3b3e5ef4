package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for file extensions the extractor cannot read.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SupportedExtensions lists the upload types accepted end to end.
var SupportedExtensions = []string{".txt", ".xlsx", ".xls"}

// IsSupported reports whether ext (with leading dot, any case) can be extracted.
func IsSupported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, s := range SupportedExtensions {
		if s == ext {
			return true
		}
	}
	return false
}

// ExtractText turns the file at filePath into a single text blob.
// Spreadsheets are flattened sheet by sheet, row by row, one non-empty cell
// per line; positional information is discarded.
func ExtractText(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".xlsx":
		return parseXLSX(filePath)
	case ".xls":
		return parseXLS(filePath)
	case ".txt":
		return parseText(filePath)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseXLSX(filePath string) (string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", fmt.Errorf("unable to open Excel file: %w", err)
	}
	defer f.Close()

	var cells []string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			log.Warn().Err(err).Str("sheet", sheetName).Msg("Skipping unreadable sheet")
			continue
		}
		for _, row := range rows {
			cells = appendCells(cells, row...)
		}
	}
	return strings.Join(cells, "\n"), nil
}

func parseXLS(filePath string) (string, error) {
	wb, err := xls.Open(filePath, "utf-8")
	if err != nil {
		return "", fmt.Errorf("unable to open Excel file: %w", err)
	}
	if wb == nil {
		return "", errors.New("unable to open Excel file: no workbook stream")
	}

	var cells []string
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := xlsRow(sheet, r)
			if row == nil {
				continue
			}
			for c := row.FirstCol(); c <= row.LastCol(); c++ {
				cells = appendCells(cells, row.Col(c))
			}
		}
	}
	return strings.Join(cells, "\n"), nil
}

// xlsRow returns nil for rows the sheet never defined; the library panics on them.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func parseText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

func appendCells(dst []string, cells ...string) []string {
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			dst = append(dst, cell)
		}
	}
	return dst
}
