package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/carbonref/factor-cli/internal/model"
)

// WriteXLSX encodes records as a single-sheet XLSX workbook.
func WriteXLSX(w io.Writer, p *Projector, records []model.EmissionFactor) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(p.SheetName())
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	writeXLSXRow(sheet, p.Header())
	for i := range records {
		writeXLSXRow(sheet, p.Row(&records[i]))
	}

	return eris.Wrap(f.Write(w), "export: write workbook")
}

func writeXLSXRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, value := range cells {
		row.AddCell().SetString(value)
	}
}
