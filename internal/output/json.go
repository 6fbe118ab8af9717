package output

import (
	"encoding/json"

	"github.com/namelens/searchrelay/internal/relay"
)

// JSONFormatter renders the reply exactly as the HTTP endpoint would.
type JSONFormatter struct {
	Indent bool
}

// FormatReply renders a reply as JSON.
func (f *JSONFormatter) FormatReply(_ string, reply relay.ChatReply) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(reply, "", "  ")
	} else {
		data, err = json.Marshal(reply)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
