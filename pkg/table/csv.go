package table

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/lastmilefood/rescuesync/pkg/errors"
)

// ReadCSV parses delimited text with a header row. A leading byte order
// mark selects UTF-8 or UTF-16 decoding. Empty fields become Null. Short
// rows are padded with Null and long rows are truncated to the header width.
func ReadCSV(r io.Reader) (*Table, error) {
	return ReadDelimited(r, ',')
}

// ReadDelimited is ReadCSV with a custom separator.
func ReadDelimited(r io.Reader, comma rune) (*Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, errors.WrapParse("csv", "", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return nil, errors.NewParseError("csv", "", "duplicate header "+h, nil)
		}
		seen[h] = true
	}

	t := New(header...)
	row := make([]Value, len(header))
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &errors.ParseError{Format: "csv", Line: line, Message: err.Error(), Err: err}
		}
		for i := range row {
			if i < len(rec) {
				row[i] = Parse(rec[i])
			} else {
				row[i] = Null()
			}
		}
		_ = t.AppendRow(row...)
	}
	return t, nil
}

// ReadFile loads a CSV file and labels the table with its base name.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		if pe, ok := err.(*errors.ParseError); ok {
			pe.File = path
			return nil, pe
		}
		return nil, err
	}
	return t.Named(filepath.Base(path)), nil
}

// WriteCSV writes the table as comma separated text with LF line endings.
func WriteCSV(w io.Writer, t *Table) error {
	return WriteDelimited(w, t, ',')
}

// WriteDelimited writes the table with a custom separator. Null is written
// as an empty field.
func WriteDelimited(w io.Writer, t *Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	cw.UseCRLF = false

	if err := cw.Write(t.columns); err != nil {
		return err
	}
	rec := make([]string, len(t.columns))
	for r := 0; r < t.Len(); r++ {
		for c := range t.columns {
			rec[c] = t.data[c][r].String()
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the table serialized with WriteCSV.
func (t *Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
