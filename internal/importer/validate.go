// Package importer turns uploaded roster files into validated student rows.
package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RawRow is one record keyed by lowercased column header.
type RawRow map[string]any

// Row is a validated roster entry ready for enrollment.
type Row struct {
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

const (
	ColumnName      = "name"
	ColumnStudentID = "student_id"
	ColumnPhone     = "phone"
	ColumnEmail     = "email"
)

// Validate checks every row and never stops early. Row numbers in the
// returned messages are 1-based; len(valid)+len(errs) == len(rows).
func Validate(rows []RawRow) (valid []Row, errs []string) {
	valid = make([]Row, 0, len(rows))
	errs = make([]string, 0)

	for i, raw := range rows {
		name := cell(raw, ColumnName)
		studentID := cell(raw, ColumnStudentID)
		if name == "" || studentID == "" {
			errs = append(errs, fmt.Sprintf("Row %d: Name and Student ID are required", i+1))
			continue
		}

		valid = append(valid, Row{
			Name:      name,
			StudentID: studentID,
			Phone:     cell(raw, ColumnPhone),
			Email:     cell(raw, ColumnEmail),
		})
	}

	return valid, errs
}

func cell(raw RawRow, column string) string {
	v, ok := raw[column]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

// stringify renders spreadsheet and JSON numbers without exponent or
// trailing ".0", so 231902001 stays "231902001".
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
