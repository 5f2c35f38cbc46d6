package resultstore

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"caseview/internal/errors"

	"github.com/xuri/excelize/v2"
)

// RawRow is one tabular row as trimmed string key-value pairs
type RawRow map[string]string

// TableData is a parsed tabular file: headers plus string-typed rows
type TableData struct {
	Headers []string
	Rows    []RawRow
}

// HasColumn reports whether the table carries the named header
func (t *TableData) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// ReadTable parses a CSV or XLSX file into TableData. Errors are always
// UNREADABLE_FILE AppErrors naming only the basename of the file.
func ReadTable(path string) (*TableData, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	var rows [][]string
	var err error
	switch ext {
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, errors.UnreadableFile(name, err)
	}
	if len(rows) == 0 {
		return &TableData{}, nil
	}
	return tableFromRows(rows), nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Tolerate ragged rows; short rows simply leave trailing columns empty
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func tableFromRows(rows [][]string) *TableData {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	data := make([]RawRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		r := make(RawRow, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				r[headers[j]] = strings.TrimSpace(cell)
			}
		}
		data = append(data, r)
	}
	return &TableData{Headers: headers, Rows: data}
}
