package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/namelens/searchrelay/internal/relay"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatReply renders results as a table, or the reply text on its own.
func (f *TableFormatter) FormatReply(query string, reply relay.ChatReply) (string, error) {
	if len(reply.Results) == 0 {
		return reply.Reply, nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if query != "" {
		t.SetTitle(query)
	}
	t.AppendHeader(table.Row{"#", "Title", "Link", "Image"})

	for i, r := range reply.Results {
		t.AppendRow(table.Row{i + 1, r.Title, r.Link, imageLabel(r)})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d result(s)", len(reply.Results)), ""})

	return t.Render(), nil
}
