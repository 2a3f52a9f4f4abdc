package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	TemplateFilename    = "student_import_template.xlsx"
	TemplateContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	templateSheet       = "Students"
)

var templateRows = [][]interface{}{
	{ColumnName, ColumnStudentID, ColumnPhone, ColumnEmail},
	{"John Doe", "231902001", "01712345678", "john@example.com"},
	{"Jane Smith", "231902002", "01712345679", "jane@example.com"},
}

// Template builds the downloadable roster workbook with two example rows.
func Template() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return nil, err
	}

	for i, row := range templateRows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(templateSheet, cellName, &row); err != nil {
			return nil, fmt.Errorf("write template row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(templateSheet, "A", "D", 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
