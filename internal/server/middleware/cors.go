package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS response headers
const (
	AllowOriginHeader  = "Access-Control-Allow-Origin"
	AllowMethodsHeader = "Access-Control-Allow-Methods"
	AllowHeadersHeader = "Access-Control-Allow-Headers"
)

// CORSOptions configures cross-origin handling for the relay.
type CORSOptions struct {
	AllowedHeaders []string
	Debug          bool
}

// CORS finalizes every response for browser clients. The allow-origin
// header is set before routing, so success, error and 404/405 branches
// all carry it even when the request has no Origin header; rs/cors then
// answers preflight negotiation and passes OPTIONS through to the router.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	allowedHeaders := opts.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       allowedHeaders,
		OptionsPassthrough:   true,
		OptionsSuccessStatus: http.StatusOK,
		Debug:                opts.Debug,
	})

	return func(next http.Handler) http.Handler {
		handler := c.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(AllowOriginHeader, "*")
			handler.ServeHTTP(w, r)
		})
	}
}
