package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
)

const (
	title       = "GUSMP Batch Report"
	programName = "Green University Student Mentorship Program"
	fontFamily  = "Helvetica"
)

var (
	accent    = [3]int{40, 167, 69}
	secondary = [3]int{100, 100, 100}
)

type column struct {
	header string
	width  float64
	align  string
}

// Render draws the summary as an A4 PDF.
func Render(s Summary) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 15, 14)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 5, programName, "", 0, "C", false, 0, "")
		pdf.SetX(14)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 22)
	pdf.SetTextColor(accent[0], accent[1], accent[2])
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	pdf.SetFont(fontFamily, "", 12)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 8, "Generated on: "+s.GeneratedAt.Format("Jan 2, 2006, 3:04 PM"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	b := s.Batch
	heading(pdf, "Batch Information")
	table(pdf, tr, accent, []column{
		{"Batch Name", 50, "L"},
		{"Department", 40, "L"},
		{"Section", 25, "L"},
		{"Semester", 30, "L"},
		{"Status", 37, "L"},
	}, [][]string{{b.BatchName, b.DepartmentName, b.Section, b.Semester, b.Status}})

	heading(pdf, "Student Attendance Summary")
	studentRows := make([][]string, 0, len(s.Students))
	for _, line := range s.Students {
		studentRows = append(studentRows, []string{
			line.StudentID,
			line.Name,
			strconv.Itoa(line.Present),
			strconv.Itoa(line.Total),
			strconv.Itoa(line.Percentage) + "%",
		})
	}
	table(pdf, tr, accent, []column{
		{"Student ID", 35, "L"},
		{"Name", 67, "L"},
		{"Present", 25, "C"},
		{"Total Sessions", 30, "C"},
		{"Percentage", 25, "C"},
	}, studentRows)

	if len(s.Sessions) > 0 {
		heading(pdf, "Session Details")
		sessionRows := make([][]string, 0, len(s.Sessions))
		for _, line := range s.Sessions {
			sessionRows = append(sessionRows, []string{
				strconv.Itoa(line.Number),
				line.Date,
				line.Method,
				line.Location,
				fmt.Sprintf("%d / %d", line.Present, line.Students),
			})
		}
		table(pdf, tr, secondary, []column{
			{"#", 15, "C"},
			{"Date", 40, "L"},
			{"Method", 30, "L"},
			{"Details", 57, "L"},
			{"Attendance Count", 40, "C"},
		}, sessionRows)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func table(pdf *fpdf.Fpdf, tr func(string) string, head [3]int, columns []column, rows [][]string) {
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(head[0], head[1], head[2])
	pdf.SetTextColor(255, 255, 255)
	for _, c := range columns {
		pdf.CellFormat(c.width, 8, c.header, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(0, 0, 0)
	for i, row := range rows {
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		for j, c := range columns {
			value := ""
			if j < len(row) {
				value = tr(row[j])
			}
			pdf.CellFormat(c.width, 7, value, "1", 0, c.align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
}
