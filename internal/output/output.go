// Package output renders chat replies for the terminal.
package output

import (
	"fmt"
	"strings"

	"github.com/namelens/searchrelay/internal/relay"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders one relay reply.
type Formatter interface {
	FormatReply(query string, reply relay.ChatReply) (string, error)
}

// ParseFormat validates and normalizes a format string. Empty means JSON,
// the same body POST /chat returns.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatJSON):
		return FormatJSON, nil
	case string(FormatTable):
		return FormatTable, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatTable:
		return &TableFormatter{}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &JSONFormatter{Indent: true}
	}
}

func imageLabel(r relay.Result) string {
	if r.Image == nil || *r.Image == "" {
		return "-"
	}
	return *r.Image
}
