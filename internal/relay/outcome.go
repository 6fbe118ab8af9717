package relay

// Kind discriminates the result of a relay call.
type Kind string

const (
	KindInvalidInput  Kind = "invalid_input"
	KindSuccess       Kind = "success"
	KindEmpty         Kind = "empty"
	KindUpstreamError Kind = "upstream_error"
	KindUnexpected    Kind = "unexpected"
)

// User-facing replies.
const (
	ReplyInvalidInput  = "Please provide a valid query."
	ReplyUpstreamError = "Error connecting to Google Search API."
	ReplyEmpty         = "I couldn't find anything relevant to your query."
	replyUnexpected    = "An unexpected error occurred: "
)

// Result is one simplified search hit. Image encodes as null when absent.
type Result struct {
	Title string  `json:"title"`
	Link  string  `json:"link"`
	Image *string `json:"image"`
}

// Outcome is what a relay call produced. Results is set only for
// KindSuccess and Detail only for KindUnexpected.
type Outcome struct {
	Kind    Kind
	Results []Result
	Detail  string
}

// ChatReply is the JSON body returned to the widget. Exactly one field is set.
type ChatReply struct {
	Results []Result `json:"results,omitempty"`
	Reply   string   `json:"reply,omitempty"`
}

// Reply renders the outcome as the body sent to the client.
func (o Outcome) Reply() ChatReply {
	switch o.Kind {
	case KindSuccess:
		return ChatReply{Results: o.Results}
	case KindEmpty:
		return ChatReply{Reply: ReplyEmpty}
	case KindUpstreamError:
		return ChatReply{Reply: ReplyUpstreamError}
	case KindUnexpected:
		return ChatReply{Reply: replyUnexpected + o.Detail}
	default:
		return ChatReply{Reply: ReplyInvalidInput}
	}
}
