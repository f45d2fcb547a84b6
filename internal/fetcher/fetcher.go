// Package fetcher parses tabular import files (XLSX and CSV) into raw
// rows keyed by their header cells.
package fetcher

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/carbonref/factor-cli/internal/model"
)

// Table is a parsed spreadsheet: one header row and zero or more data
// rows. Cell values are untrimmed of meaning but trimmed of whitespace.
type Table struct {
	Header []string
	Rows   [][]string
}

// Records maps each data row onto its header, producing the raw rows
// the normalizer consumes. Columns with an empty header are dropped;
// rows shorter than the header leave the missing cells absent.
func (t *Table) Records() []model.RawRow {
	records := make([]model.RawRow, 0, len(t.Rows))
	for _, cells := range t.Rows {
		row := model.RawRow{}
		for i, header := range t.Header {
			if header == "" || i >= len(cells) {
				continue
			}
			row[header] = cells[i]
		}
		records = append(records, row)
	}
	return records
}

// ReadFile parses an import file, dispatching on its extension.
func ReadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path, XLSXOptions{})
	case ".csv":
		return ReadCSVFile(path)
	default:
		return nil, eris.Errorf("fetcher: unsupported file type %q (expected .xlsx or .csv)", filepath.Ext(path))
	}
}
