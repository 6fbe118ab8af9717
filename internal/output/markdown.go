package output

import (
	"fmt"
	"strings"

	"github.com/namelens/searchrelay/internal/relay"
)

// MarkdownFormatter renders results as a markdown table.
type MarkdownFormatter struct{}

// FormatReply renders a reply as Markdown.
func (f *MarkdownFormatter) FormatReply(query string, reply relay.ChatReply) (string, error) {
	var sb strings.Builder
	if query != "" {
		sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(query)))
	}

	if len(reply.Results) == 0 {
		sb.WriteString(reply.Reply)
		sb.WriteString("\n")
		return sb.String(), nil
	}

	sb.WriteString("| # | Title | Link | Image |\n")
	sb.WriteString("|---|-------|------|-------|\n")
	for i, r := range reply.Results {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
			i+1,
			escapeMarkdownCell(r.Title),
			escapeMarkdownCell(r.Link),
			escapeMarkdownCell(imageLabel(r)),
		))
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.TrimSpace(value)
}
