package bulkupdate

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
)

// Row is one data row found by the preflight.
type Row struct {
	Line        int    `json:"line"`
	ProductName string `json:"productName,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

// Sheet is what the preflight learned about a spreadsheet. It is only used to
// cross-check the server report; the server stays authoritative.
type Sheet struct {
	Format    Format `json:"format"`
	Delimiter string `json:"delimiter,omitempty"`
	Rows      []Row  `json:"rows"`
}

type sheetRow struct {
	ProductName string `csv:"name"`
	Reference   string `csv:"reference"`
}

// headerAliases maps accepted column titles to the canonical ones.
var headerAliases = map[string]string{
	"name":         "name",
	"product":      "name",
	"product name": "name",
	"productname":  "name",
	"product_name": "name",
	"nombre":       "name",
	"reference":    "reference",
	"ref":          "reference",
	"referencia":   "reference",
	"sku":          "reference",
	"code":         "reference",
}

// Preflight parses the spreadsheet locally.
func Preflight(format Format, data []byte) (*Sheet, error) {
	var (
		records [][]string
		sheet   = &Sheet{Format: format}
		err     error
	)

	switch format {
	case FormatCSV:
		delimiter := detectDelimiter(data)
		sheet.Delimiter = string(delimiter)
		records, err = readCSV(data, delimiter)
	case FormatXLSX:
		records, err = readXLSX(data)
	default:
		return nil, ErrUnsupportedFile
	}
	if err != nil {
		return nil, err
	}

	records = dropBlank(records)
	if len(records) == 0 {
		return sheet, nil
	}

	var rows []sheetRow
	if err := gocsv.UnmarshalCSV(newRecordReader(records), &rows); err != nil {
		return nil, fmt.Errorf("reading spreadsheet rows: %w", err)
	}

	sheet.Rows = make([]Row, len(rows))
	for i, r := range rows {
		sheet.Rows[i] = Row{
			// Line 1 is the header.
			Line:        i + 2,
			ProductName: strings.TrimSpace(r.ProductName),
			Reference:   strings.TrimSpace(r.Reference),
		}
	}
	return sheet, nil
}

func readCSV(data []byte, delimiter rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return records, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}

	sheets := f.GetSheetMap()
	if len(sheets) == 0 {
		return nil, nil
	}
	indexes := make([]int, 0, len(sheets))
	for i := range sheets {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	return f.GetRows(sheets[indexes[0]]), nil
}

func dropBlank(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		for _, field := range rec {
			if strings.TrimSpace(field) != "" {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// recordReader feeds already-parsed records to gocsv with the header row
// rewritten to canonical column names.
type recordReader struct {
	records [][]string
	pos     int
}

func newRecordReader(records [][]string) *recordReader {
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := headerAliases[key]; ok {
			key = canonical
		}
		header[i] = key
	}

	out := make([][]string, len(records))
	out[0] = header
	copy(out[1:], records[1:])
	return &recordReader{records: out}
}

func (r *recordReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := r.records[r.pos]
	r.pos++
	return rec, nil
}

func (r *recordReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}
