package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

func TestIsSupported(t *testing.T) {
	for _, ext := range []string{".txt", ".xlsx", ".xls", ".TXT", ".Xlsx"} {
		assert.True(t, IsSupported(ext), ext)
	}
	for _, ext := range []string{".pdf", ".docx", "", ".csv"} {
		assert.False(t, IsSupported(ext), ext)
	}
}

func TestExtractText_TwoSheetWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "a"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", ""))
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "b"))
	_, err := f.NewSheet("Sheet2")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet2", "A1", "c"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, strings.Split(text, "\n"))
}

// two_sheets.xls is a BIFF8 workbook: sheet one holds A1 "a", a blank B1
// and C1 "b"; sheet two holds only A3 "c".
func TestExtractText_LegacyWorkbook(t *testing.T) {
	text, err := ExtractText(filepath.Join("testdata", "two_sheets.xls"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, strings.Split(text, "\n"))
}

func TestExtractText_LegacyWorkbookNotOLE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.xls")
	require.NoError(t, os.WriteFile(path, []byte("name,salary\njane,1"), 0o644))

	_, err := ExtractText(path)
	assert.Error(t, err)
}

func TestExtractText_TrimsAndFlattensRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payroll.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "  Name "))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Salary"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Jane"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 85000))
	require.NoError(t, f.SetCellValue("Sheet1", "A4", "   "))
	require.NoError(t, f.SetCellValue("Sheet1", "B4", "SSN 123-45-6789"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "Name\nSalary\nJane\n85000\nSSN 123-45-6789", text)
}

func TestExtractText_WorkbookFromOtherWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.xlsx")

	file := xlsx.NewFile()
	first, err := file.AddSheet("Reviews")
	require.NoError(t, err)
	row := first.AddRow()
	row.AddCell().SetString("PIP issued")
	row.AddCell().SetString("")
	row.AddCell().SetString("bonus withheld")
	second, err := file.AddSheet("Accounts")
	require.NoError(t, err)
	second.AddRow().AddCell().SetString("routing 021000021")
	require.NoError(t, file.Save(path))

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "PIP issued\nbonus withheld\nrouting 021000021", text)
}

func TestExtractText_PlainTextVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.txt")
	content := "  Salary: $120,000\n\nTermination letter attached.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestExtractText_DropsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.txt")
	require.NoError(t, os.WriteFile(path, []byte("ok\xffdone"), 0o644))

	text, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "okdone", text)
}

func TestExtractText_Unsupported(t *testing.T) {
	_, err := ExtractText("report.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractText_MissingFile(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
