package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, upload a .csv, .xlsx or .xls file")
	ErrEmptyFile         = errors.New("file contains no rows")
	ErrTooManyRows       = errors.New("file contains too many rows")
)

const (
	// maxXLSRows bounds how many rows of a legacy sheet are read.
	maxXLSRows = 100000
	// maxXLSColumns is the BIFF8 column limit.
	maxXLSColumns = 256
)

// Supported reports whether the filename has an importable extension.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

// Parse reads the first sheet (or the CSV body) and keys every data row by
// its header. Blank rows are skipped; maxRows <= 0 disables the limit.
func Parse(filename string, r io.Reader, maxRows int) ([]RawRow, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	case ".xls":
		records, err = readXLS(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	rows := recordsToRows(records)
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	if maxRows > 0 && len(rows) > maxRows {
		return nil, fmt.Errorf("%w: %d rows, limit is %d", ErrTooManyRows, len(rows), maxRows)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrEmptyFile
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	return rows, nil
}

func readXLS(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if workbook == nil || workbook.NumSheets() == 0 {
		return nil, ErrEmptyFile
	}

	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmptyFile
	}

	last := int(sheet.MaxRow)
	if last >= maxXLSRows {
		last = maxXLSRows - 1
	}

	width := maxXLSColumns
	records := make([][]string, 0, last+1)
	for i := 0; i <= last; i++ {
		row, ok := xlsRow(sheet, i)
		if !ok {
			records = append(records, nil)
			continue
		}

		record := make([]string, width)
		for c := range record {
			record[c] = row.Col(c)
		}
		record = trimTrailing(record)
		if i == 0 {
			// header row fixes the width of every data row
			width = len(record)
		}
		records = append(records, record)
	}
	return records, nil
}

// xlsRow returns row i of the sheet. Sheet.Row panics on rows the file has no
// record for, which is how legacy workbooks store blank rows.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row, ok bool) {
	defer func() {
		if recover() != nil {
			row, ok = nil, false
		}
	}()
	return sheet.Row(i), true
}

func trimTrailing(record []string) []string {
	n := len(record)
	for n > 0 && strings.TrimSpace(record[n-1]) == "" {
		n--
	}
	return record[:n]
}

func recordsToRows(records [][]string) []RawRow {
	if len(records) == 0 {
		return nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = normalizeHeader(h)
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}
		row := make(RawRow, len(header))
		for i, key := range header {
			if key == "" || i >= len(record) {
				continue
			}
			row[key] = record[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// normalizeHeader maps "Student ID", " student_id " and "STUDENT-ID" to "student_id".
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return h
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
