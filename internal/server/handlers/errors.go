package handlers

import (
	"net/http"

	apperrors "github.com/namelens/searchrelay/internal/errors"
)

// NotFound renders unknown routes as a NOT_FOUND envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	apperrors.RespondWithEnvelope(w, r, apperrors.NewNotFoundError("resource not found"))
}

// MethodNotAllowed renders a METHOD_NOT_ALLOWED envelope.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	methodNotAllowed(w, r)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	env := apperrors.NewMethodNotAllowedError("method " + r.Method + " not allowed on " + r.URL.Path)
	apperrors.RespondWithEnvelope(w, r, env)
}
