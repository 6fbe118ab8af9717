package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/namelens/searchrelay/internal/observability"
	"github.com/namelens/searchrelay/internal/relay"
	"github.com/namelens/searchrelay/internal/server/middleware"
)

// maxChatBodyBytes bounds the inbound request body.
const maxChatBodyBytes = 64 << 10

// preflightMethods is advertised on OPTIONS /chat.
const preflightMethods = "POST, OPTIONS"

var (
	errBodyTooLarge = errors.New("chat body exceeds size limit")
	errInvalidBody  = errors.New("chat body is not a message object")
)

type chatRequest struct {
	Message string `json:"message"`
}

// ChatHandler adapts the relay to POST and OPTIONS /chat. Every reply is a
// 200 with a JSON body; failures are expressed in the reply text.
type ChatHandler struct {
	relay *relay.Relay
}

// NewChatHandler creates a handler around r.
func NewChatHandler(r *relay.Relay) *ChatHandler {
	return &ChatHandler{relay: r}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := observability.Logger()

	message, err := decodeMessage(w, r)
	query, _ := relay.ParseQuery(message)

	var out relay.Outcome
	if err != nil {
		if errors.Is(err, errBodyTooLarge) && logger != nil {
			logger.Debug("Chat body exceeds size limit",
				zap.Int64("limit_bytes", maxChatBodyBytes),
				zap.Int64("content_length", r.ContentLength),
				zap.String("request_id", middleware.GetRequestID(r.Context())))
		}
		out = relay.Outcome{Kind: relay.KindInvalidInput}
	} else {
		out = h.relay.Handle(r.Context(), message)
	}

	writeReply(w, out.Reply())

	if logger != nil {
		logger.Info("Chat request handled", chatLogFields(r, out, query, time.Since(start))...)
	}
}

// chatLogFields never carries the query text itself.
func chatLogFields(r *http.Request, out relay.Outcome, query string, elapsed time.Duration) []zap.Field {
	return []zap.Field{
		zap.String("outcome", string(out.Kind)),
		zap.Int("results", len(out.Results)),
		zap.Int("query_length", len(query)),
		zap.Duration("duration", elapsed),
		zap.String("request_id", middleware.GetRequestID(r.Context())),
	}
}

// Preflight handles OPTIONS /chat without touching the provider.
func (h *ChatHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	header.Set(middleware.AllowOriginHeader, "*")
	header.Set(middleware.AllowMethodsHeader, preflightMethods)
	if header.Get(middleware.AllowHeadersHeader) == "" {
		header.Set(middleware.AllowHeadersHeader, "Content-Type")
	}
	w.WriteHeader(http.StatusOK)
}

// ServeHTTP dispatches on method for callers that mount the handler directly.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		h.Preflight(w, r)
	case http.MethodPost:
		h.Chat(w, r)
	default:
		w.Header().Set("Allow", preflightMethods)
		methodNotAllowed(w, r)
	}
}

// decodeMessage reads {"message": string}. A malformed body, a non-object
// or a non-string message all decode as errInvalidBody.
func decodeMessage(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.Body == nil {
		return "", errInvalidBody
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", errBodyTooLarge
		}
		return "", errInvalidBody
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", errInvalidBody
	}
	return req.Message, nil
}

func writeReply(w http.ResponseWriter, reply relay.ChatReply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(reply)
}
