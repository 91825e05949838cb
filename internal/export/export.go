// Package export writes the content model as a table of entities or
// attributes, for documentation and review.
package export

import (
	"fmt"
	"strings"
	"time"
)

// ExportFormat represents different output export formats
type ExportFormat string

const (
	FormatText     ExportFormat = "txt"
	FormatJSON     ExportFormat = "json"
	FormatCSV      ExportFormat = "csv"
	FormatMarkdown ExportFormat = "md"
	FormatHTML     ExportFormat = "html"
)

// SupportedFormats returns the formats Export accepts
func SupportedFormats() []ExportFormat {
	return []ExportFormat{FormatText, FormatJSON, FormatCSV, FormatMarkdown, FormatHTML}
}

// ParseFormat accepts a format name or its file extension
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported format %q (use txt, json, csv, md or html)", s)
}

// ExportResult describes a written export file
type ExportResult struct {
	FilePath  string
	Format    ExportFormat
	Size      int64
	Success   bool
	Error     error
	Timestamp time.Time
}
