package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	ColumnSalutation = "recipient_salutation"
	ColumnName       = "recipient_name"
	ColumnTitle      = "recipient_title"
)

var (
	ErrUnsupportedExtension = errors.New("only .xlsx files are supported")
	ErrEmptyFile            = errors.New("file is empty")
	ErrInvalidWorkbook      = errors.New("invalid .xlsx file")
	ErrEmptySheet           = errors.New("spreadsheet has no header row")
	ErrMissingColumns       = errors.New("missing required columns")
)

// headerAliases maps every accepted (normalized) header to its column.
var headerAliases = map[string]string{
	"recipient_salutation": ColumnSalutation,
	"salutation":           ColumnSalutation,
	"danh_xưng":            ColumnSalutation,
	"danh_xung":            ColumnSalutation,
	"xưng_hô":              ColumnSalutation,
	"xung_ho":              ColumnSalutation,

	"recipient_name": ColumnName,
	"name":           ColumnName,
	"full_name":      ColumnName,
	"fullname":       ColumnName,
	"họ_tên":         ColumnName,
	"họ_và_tên":      ColumnName,
	"ho_ten":         ColumnName,
	"ho_va_ten":      ColumnName,
	"tên":            ColumnName,
	"người_nhận":     ColumnName,
	"nguoi_nhan":     ColumnName,

	"recipient_title": ColumnTitle,
	"title":           ColumnTitle,
	"position":        ColumnTitle,
	"job_title":       ColumnTitle,
	"chức_vụ":         ColumnTitle,
	"chuc_vu":         ColumnTitle,
	"chức_danh":       ColumnTitle,
	"chuc_danh":       ColumnTitle,
}

var folder = cases.Fold()

// NormalizeHeader case-folds a header cell and collapses runs of whitespace,
// hyphens and underscores into a single underscore.
func NormalizeHeader(s string) string {
	s = folder.String(norm.NFC.String(strings.TrimSpace(s)))

	var b strings.Builder
	sep := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}

// Recipient is one data row of an import sheet. Number is the 1-based
// spreadsheet row, so the first data row is 2.
type Recipient struct {
	Number     int
	Salutation string
	Name       string
	Title      string
}

// Blank reports whether all three recipient fields are empty.
func (r Recipient) Blank() bool {
	return r.Salutation == "" && r.Name == "" && r.Title == ""
}

// Missing lists the mandatory columns this row leaves empty.
func (r Recipient) Missing() []string {
	var missing []string
	if r.Name == "" {
		missing = append(missing, ColumnName)
	}
	if r.Title == "" {
		missing = append(missing, ColumnTitle)
	}
	return missing
}

// CheckUpload validates the file name and raw bytes of an uploaded workbook
// before it is parsed.
func CheckUpload(filename string, data []byte) error {
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ErrUnsupportedExtension
	}
	if len(data) == 0 {
		return ErrEmptyFile
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return nil
		}
	}
	return ErrInvalidWorkbook
}

// ReadRecipients parses the first sheet of an .xlsx workbook. The first row
// is the header; every following row is returned, blank ones included.
func ReadRecipients(data []byte) ([]Recipient, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	columns := locateColumns(rows[0])
	var missing []string
	for _, required := range []string{ColumnName, ColumnTitle} {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	recipients := make([]Recipient, 0, len(rows)-1)
	for i, row := range rows[1:] {
		recipients = append(recipients, Recipient{
			Number:     i + 2,
			Salutation: cell(row, columns, ColumnSalutation),
			Name:       cell(row, columns, ColumnName),
			Title:      cell(row, columns, ColumnTitle),
		})
	}

	return recipients, nil
}

// locateColumns returns the index of the first header matching each column.
func locateColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for i, h := range header {
		column, ok := headerAliases[NormalizeHeader(h)]
		if !ok {
			continue
		}
		if _, seen := columns[column]; !seen {
			columns[column] = i
		}
	}
	return columns
}

func cell(row []string, columns map[string]int, column string) string {
	idx, ok := columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
