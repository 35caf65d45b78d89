package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeBrosOfficial/ufwtail/pkg/errors"
)

// WriteJSON writes v as a JSON response with the given status code.
// Encoding errors are ignored; the header is already sent by then.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err through the error taxonomy. The request id set by
// middleware.RequestID is echoed as the trace id.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := ""
	if r != nil {
		traceID = middleware.GetReqID(r.Context())
	}
	httpErr := errors.ToHTTPError(err, traceID)
	WriteJSON(w, httpErr.Status, map[string]any{"error": httpErr})
}

// WriteStatus writes {"status": status}.
func WriteStatus(w http.ResponseWriter, code int, status string) {
	WriteJSON(w, code, map[string]any{"status": status})
}
