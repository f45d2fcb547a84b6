package fetcher

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSVFile reads a CSV import file from disk.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses CSV data. A UTF-8 byte order mark is stripped; files
// that are not valid UTF-8 are decoded as GBK, the common encoding of
// spreadsheets exported from Chinese-locale Excel. The first non-empty
// row is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "csv: read")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		data, err = decodeGBK(data)
		if err != nil {
			return nil, err
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := &Table{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}

		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		if emptyRow(record) {
			continue
		}

		if table.Header == nil {
			table.Header = record
			continue
		}
		table.Rows = append(table.Rows, record)
	}

	if table.Header == nil {
		return nil, eris.New("csv: file has no header row")
	}
	return table, nil
}

func decodeGBK(data []byte) ([]byte, error) {
	enc, err := htmlindex.Get("gbk")
	if err != nil {
		return nil, eris.Wrap(err, "csv: gbk codec")
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, eris.Wrap(err, "csv: decode gbk")
	}
	return decoded, nil
}
