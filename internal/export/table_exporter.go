package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/jontk/ctb/internal/fileperms"
	"github.com/jontk/ctb/internal/security"
)

// TableData holds tabular data for export (headers + rows + metadata).
type TableData struct {
	Title      string     // e.g. "Attributes", "Entities"
	Headers    []string   // column names
	Rows       [][]string // raw row values
	ExportedAt time.Time
}

// TableExporter exports tabular data to various file formats.
type TableExporter struct {
	defaultPath string
}

// NewTableExporter creates a new TableExporter writing generated file
// names into defaultPath, the working directory when empty.
func NewTableExporter(defaultPath string) *TableExporter {
	if defaultPath == "" {
		defaultPath = "."
	}
	return &TableExporter{defaultPath: defaultPath}
}

// DefaultPath returns the directory generated file names are written to
func (e *TableExporter) DefaultPath() string {
	return e.defaultPath
}

// Export writes td to a file and returns a Result.
// If customPath is non-empty it is used as the full output path;
// otherwise a timestamped filename is generated in defaultPath.
func (e *TableExporter) Export(td *TableData, format ExportFormat, customPath string) (*ExportResult, error) {
	if td.ExportedAt.IsZero() {
		td.ExportedAt = time.Now()
	}

	result := &ExportResult{
		Format:    format,
		Timestamp: td.ExportedAt,
	}

	outputPath := customPath
	if outputPath == "" {
		outputPath = filepath.Join(e.defaultPath, e.generateFilename(td, format))
	}
	result.FilePath = outputPath

	if err := security.EnsureDir(filepath.Dir(outputPath), fileperms.SchemaDir); err != nil {
		result.Error = fmt.Errorf("failed to create directory for %s: %w", outputPath, err)
		return result, result.Error
	}

	f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileperms.SchemaFile)
	if err != nil {
		result.Error = fmt.Errorf("create file: %w", err)
		return result, result.Error
	}
	err = Write(f, td, format)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		result.Error = err
		return result, err
	}

	if stat, err := os.Stat(outputPath); err == nil {
		result.Size = stat.Size()
	}
	result.Success = true
	return result, nil
}

func (e *TableExporter) generateFilename(td *TableData, format ExportFormat) string {
	clean := strings.ToLower(strings.ReplaceAll(td.Title, " ", "_"))
	ts := td.ExportedAt.Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", clean, ts, string(format))
}

// Write renders td in format to w
func Write(w io.Writer, td *TableData, format ExportFormat) error {
	if td.ExportedAt.IsZero() {
		td.ExportedAt = time.Now()
	}
	switch format {
	case FormatText:
		return writeText(w, td)
	case FormatJSON:
		return writeJSON(w, td)
	case FormatCSV:
		return writeCSV(w, td)
	case FormatMarkdown:
		return writeMarkdown(w, td)
	case FormatHTML:
		return writeHTML(w, td)
	}
	return fmt.Errorf("unsupported format: %s", format)
}

// writeText writes a plain-text table.
func writeText(w io.Writer, td *TableData) error {
	// Compute column widths.
	widths := make([]int, len(td.Headers))
	for i, h := range td.Headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range td.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	separator := buildSeparator(widths)

	header := fmt.Sprintf("%s\n", td.Title)
	header += fmt.Sprintf("Exported at: %s\n", td.ExportedAt.Format("2006-01-02 15:04:05"))
	header += fmt.Sprintf("Total records: %d\n\n", len(td.Rows))
	if _, err := fmt.Fprint(w, header); err != nil {
		return err
	}

	lines := []string{separator, buildRow(td.Headers, widths), separator}
	for _, row := range td.Rows {
		lines = append(lines, buildRow(row, widths))
	}
	lines = append(lines, separator)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func buildSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

func buildRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = " " + runewidth.FillRight(cell, w) + " "
	}
	return "|" + strings.Join(parts, "|") + "|"
}

// writeCSV writes a CSV file.
func writeCSV(w io.Writer, td *TableData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(td.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range td.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeJSON writes a JSON array of objects keyed by header name.
func writeJSON(w io.Writer, td *TableData) error {
	type envelope struct {
		Title      string              `json:"title"`
		ExportedAt string              `json:"exported_at"`
		Total      int                 `json:"total"`
		Records    []map[string]string `json:"records"`
	}

	records := make([]map[string]string, len(td.Rows))
	for i, row := range td.Rows {
		m := make(map[string]string, len(td.Headers))
		for j, h := range td.Headers {
			if j < len(row) {
				m[h] = row[j]
			}
		}
		records[i] = m
	}

	env := envelope{
		Title:      td.Title,
		ExportedAt: td.ExportedAt.Format(time.RFC3339),
		Total:      len(td.Rows),
		Records:    records,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// writeMarkdown writes a Markdown table.
func writeMarkdown(w io.Writer, td *TableData) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", td.Title)
	fmt.Fprintf(&b, "_Exported at %s, %d records_\n\n", td.ExportedAt.Format("2006-01-02 15:04:05"), len(td.Rows))

	fmt.Fprintf(&b, "| %s |\n", strings.Join(td.Headers, " | "))
	seps := make([]string, len(td.Headers))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(&b, "| %s |\n", strings.Join(seps, " | "))
	for _, row := range td.Rows {
		// Pad row to match header count
		cells := make([]string, len(td.Headers))
		for i := range cells {
			if i < len(row) {
				cells[i] = strings.ReplaceAll(row[i], "|", `\|`)
			}
		}
		fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var htmlTable = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body{font-family:monospace;background:#1e1e1e;color:#d4d4d4;margin:20px}
    h1{color:#569cd6}
    .meta{color:#808080;margin-bottom:16px}
    table{border-collapse:collapse;width:100%}
    th{background:#2d2d30;color:#9cdcfe;padding:8px 12px;text-align:left;border:1px solid #3c3c3c}
    td{padding:6px 12px;border:1px solid #3c3c3c}
    tr:nth-child(even){background:#252526}
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p class="meta">Exported at {{.ExportedAt.Format "2006-01-02 15:04:05"}}, {{len .Rows}} records</p>
  <table>
    <thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
      {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
      {{end}}
    </tbody>
  </table>
</body>
</html>
`))

// writeHTML writes an HTML table.
func writeHTML(w io.Writer, td *TableData) error {
	if err := htmlTable.Execute(w, td); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	return nil
}
