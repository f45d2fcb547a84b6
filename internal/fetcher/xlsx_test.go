package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestXLSX(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, value := range cells {
			row.AddCell().SetString(value)
		}
	}

	path := filepath.Join(t.TempDir(), "import.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeTestXLSX(t, "Factors", [][]string{
		{"Category L1", "Country Code", "Value"},
		{"Energy", "CN", "0.8872"},
		{"Transport", "DE", "0.12"},
	})

	table, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Category L1", "Country Code", "Value"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Energy", "CN", "0.8872"}, table.Rows[0])
}

func TestReadXLSXSkipsEmptyRows(t *testing.T) {
	path := writeTestXLSX(t, "Factors", [][]string{
		{"", "", ""},
		{"Category L1", "Value"},
		{"Energy", "0.5"},
		{"", ""},
		{"Transport", "0.1"},
	})

	table, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Category L1", "Value"}, table.Header)
	assert.Len(t, table.Rows, 2)
}

func TestReadXLSXSheetByName(t *testing.T) {
	path := writeTestXLSX(t, "数据", [][]string{
		{"中文名称", "排放值"},
		{"燃煤发电", "0.8872"},
	})

	table, err := ReadXLSX(path, XLSXOptions{SheetName: "数据"})
	require.NoError(t, err)
	assert.Equal(t, []string{"中文名称", "排放值"}, table.Header)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "missing" not found`)
}

func TestReadXLSXSheetIndexOutOfRange(t *testing.T) {
	path := writeTestXLSX(t, "Factors", [][]string{{"A"}, {"1"}})

	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestTableRecords(t *testing.T) {
	table := &Table{
		Header: []string{"Category L1", "", "Value"},
		Rows: [][]string{
			{"Energy", "ignored", "0.8872"},
			{"Transport"}, // short row
		},
	}

	records := table.Records()
	require.Len(t, records, 2)

	assert.Equal(t, "Energy", records[0]["Category L1"])
	assert.Equal(t, "0.8872", records[0]["Value"])
	_, hasBlank := records[0][""]
	assert.False(t, hasBlank)

	assert.Equal(t, "Transport", records[1]["Category L1"])
	_, hasValue := records[1]["Value"]
	assert.False(t, hasValue)
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	_, err := ReadFile("factors.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
