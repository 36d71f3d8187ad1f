// Package output provides formatters for command output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	md "github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// Format types for output.
type Format string

const (
	// FormatTable represents table output format.
	FormatTable Format = "table"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
	// FormatMarkdown renders a GitHub-flavored markdown table.
	FormatMarkdown Format = "markdown"
	// FormatTSV writes tab-separated values, the artifact format.
	FormatTSV Format = "tsv"
)

// Align is a column alignment for table output.
type Align int

// Column alignments.
const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Formatter interface for all output types.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc allows functions to implement Formatter.
type FormatterFunc func(io.Writer, any) error

// Format implements the Formatter interface.
func (f FormatterFunc) Format(w io.Writer, data any) error {
	return f(w, data)
}

// NewFormatter creates appropriate formatter based on format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	case FormatTSV:
		return FormatterFunc(formatTSV)
	default:
		return &TableFormatter{}
	}
}

// JSONFormatter outputs JSON format. Tables are written as an array of
// records keyed by column name.
type JSONFormatter struct {
	Indent string
}

// Format implements the Formatter interface for JSON output.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(plain(data))
}

// YAMLFormatter outputs YAML format.
type YAMLFormatter struct{}

// Format outputs data in YAML format.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	yamlData, err := yaml.MarshalWithOptions(plain(data),
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(yamlData)
	return err
}

// TableFormatter outputs table format.
type TableFormatter struct{}

// Format outputs data in table format.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if d := toData(data); d != nil {
		return f.formatTable(w, *d)
	}
	// Fall back to JSON for non-table data
	jsonFormatter := &JSONFormatter{Indent: "  "}
	return jsonFormatter.Format(w, data)
}

func (f *TableFormatter) formatTable(w io.Writer, data Data) error {
	config := tablewriter.Config{}

	if len(data.ColumnAlignment) > 0 {
		twAlign := make([]tw.Align, len(data.ColumnAlignment))
		for i, align := range data.ColumnAlignment {
			switch align {
			case AlignLeft:
				twAlign[i] = tw.AlignLeft
			case AlignCenter:
				twAlign[i] = tw.AlignCenter
			case AlignRight:
				twAlign[i] = tw.AlignRight
			default:
				twAlign[i] = tw.Skip
			}
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: twAlign}
		config.Row.Alignment = tw.CellAlignment{PerColumn: twAlign}
	}

	tbl := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(data.Headers) > 0 {
		headers := make([]any, len(data.Headers))
		for i, h := range data.Headers {
			headers[i] = h
		}
		tbl.Header(headers...)
	}
	for _, row := range data.Rows {
		rowData := make([]any, len(row))
		for i, cell := range row {
			rowData[i] = cell
		}
		if err := tbl.Append(rowData...); err != nil {
			return err
		}
	}
	return tbl.Render()
}

// MarkdownFormatter renders tabular data as a markdown table.
type MarkdownFormatter struct{}

// Format implements the Formatter interface for markdown output.
func (f *MarkdownFormatter) Format(w io.Writer, data any) error {
	d := toData(data)
	if d == nil {
		return fmt.Errorf("%w: %T cannot be rendered as markdown", errors.ErrInvalidInput, data)
	}
	doc := md.NewMarkdown(w)
	if d.Title != "" {
		doc.H2(d.Title)
	}
	if len(d.Rows) == 0 {
		doc.PlainText(md.Italic("No rows"))
		return doc.Build()
	}
	doc.Table(md.TableSet{Header: d.Headers, Rows: d.Rows})
	return doc.Build()
}

func formatTSV(w io.Writer, data any) error {
	t, ok := data.(*table.Table)
	if !ok {
		return fmt.Errorf("%w: %T cannot be written as tsv", errors.ErrInvalidInput, data)
	}
	return table.WriteDelimited(w, t, '\t')
}

// Data represents data formatted for table output.
type Data struct {
	Title           string
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional
}

// DetectFormat auto-detects format based on terminal and environment.
func DetectFormat(explicitFormat string) Format {
	if explicitFormat != "" {
		return Format(strings.ToLower(explicitFormat))
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}
	// Default to JSON for pipes/redirects
	return FormatJSON
}

// ParseFormat converts string to Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, FormatMarkdown, FormatTSV, "":
		return format, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", &errors.ValidationError{
			Field:   "format",
			Value:   s,
			Message: "must be one of: table, json, yaml, markdown, tsv",
		}
	}
}

// toData converts the supported shapes to Data, or nil.
func toData(data any) *Data {
	switch v := data.(type) {
	case Data:
		return &v
	case *Data:
		return v
	case *table.Table:
		return TableData(v)
	}
	return convertToTableData(data)
}

// plain turns tables into a slice of records for the structured encoders.
func plain(data any) any {
	if t, ok := data.(*table.Table); ok {
		return Records(t)
	}
	return data
}

// convertToTableData attempts to convert structs and struct slices using reflection.
func convertToTableData(data any) *Data {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() == reflect.Slice && v.Len() > 0 {
		first := v.Index(0)
		if first.Kind() == reflect.Pointer {
			first = first.Elem()
		}
		if first.Kind() == reflect.Struct {
			return structSliceToTableData(v)
		}
	}
	if v.Kind() == reflect.Struct {
		return singleStructToTableData(v)
	}
	return nil
}

func structSliceToTableData(v reflect.Value) *Data {
	first := reflect.Indirect(v.Index(0))
	elemType := first.Type()

	var headers []string
	for i := 0; i < elemType.NumField(); i++ {
		if !elemType.Field(i).IsExported() {
			continue
		}
		headers = append(headers, fieldTitle(elemType.Field(i)))
	}

	var rows [][]string
	for i := 0; i < v.Len(); i++ {
		elem := reflect.Indirect(v.Index(i))
		var row []string
		for j := 0; j < elem.NumField(); j++ {
			if !elemType.Field(j).IsExported() {
				continue
			}
			row = append(row, fmt.Sprintf("%v", elem.Field(j).Interface()))
		}
		rows = append(rows, row)
	}
	return &Data{Headers: headers, Rows: rows}
}

// singleStructToTableData converts a single struct to a key-value table.
func singleStructToTableData(v reflect.Value) *Data {
	elemType := v.Type()
	var rows [][]string
	for i := 0; i < elemType.NumField(); i++ {
		field := elemType.Field(i)
		if !field.IsExported() {
			continue
		}
		rows = append(rows, []string{fieldTitle(field), fmt.Sprintf("%v", v.Field(i).Interface())})
	}
	return &Data{Headers: []string{"Property", "Value"}, Rows: rows}
}

// fieldTitle uses the json tag if available, otherwise the field name.
func fieldTitle(field reflect.StructField) string {
	jsonTag := field.Tag.Get("json")
	if jsonTag == "" || jsonTag == "-" {
		return field.Name
	}
	if idx := strings.Index(jsonTag, ","); idx > 0 {
		jsonTag = jsonTag[:idx]
	}
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(jsonTag, "_", " "))
}
