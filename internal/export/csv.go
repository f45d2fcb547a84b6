package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/carbonref/factor-cli/internal/model"
)

// utf8BOM is prepended to CSV output so spreadsheet applications pick
// up UTF-8 instead of guessing a legacy code page.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV encodes records as a UTF-8 CSV with a byte order mark.
func WriteCSV(w io.Writer, p *Projector, records []model.EmissionFactor) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return eris.Wrap(err, "export: write bom")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(p.Header()); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for i := range records {
		if err := cw.Write(p.Row(&records[i])); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}
