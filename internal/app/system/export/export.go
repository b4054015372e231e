// internal/app/system/export/export.go
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Formats
const (
	XLSX = "xlsx"
	PDF  = "pdf"
	CSV  = "csv"
)

// ErrFormat is returned for an unsupported format.
var ErrFormat = errors.New("unsupported export format")

// Table is a rendered list: one header row and string cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// File is an encoded export ready to be sent.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render encodes t in format. The file name is built from base and now.
func Render(t Table, format string, base string, now time.Time) (File, error) {
	name := fmt.Sprintf("%s-%s.%s", base, now.Format("20060102-1504"), strings.ToLower(format))
	switch strings.ToLower(format) {
	case XLSX:
		data, err := XLSXBytes(t)
		return File{Name: name, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Data: data}, err
	case PDF:
		data, err := PDFBytes(t)
		return File{Name: name, ContentType: "application/pdf", Data: data}, err
	case CSV:
		data, err := CSVBytes(t)
		return File{Name: name, ContentType: "text/csv; charset=utf-8", Data: data}, err
	}
	return File{}, fmt.Errorf("%w: %q", ErrFormat, format)
}

// CSVBytes encodes t as RFC 4180 CSV with a header row.
func CSVBytes(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, fmt.Errorf("csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
