package httputil

import (
	"net/http"
	"strconv"

	"github.com/DeBrosOfficial/ufwtail/pkg/errors"
)

// QueryParam returns the value of a query parameter, or defaultValue if not present.
func QueryParam(r *http.Request, key, defaultValue string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return defaultValue
}

// QueryInt parses an optional integer query parameter. Missing values yield
// defaultValue; malformed or out of range values yield a ValidationError.
func QueryInt(r *http.Request, key string, defaultValue, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError(key, "must be an integer", raw)
	}
	if n < lo || n > hi {
		return 0, errors.NewValidationError(key,
			"must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi), n)
	}
	return n, nil
}

// QueryUint64 parses an optional unsigned query parameter such as a sequence
// number cursor.
func QueryUint64(r *http.Request, key string) (uint64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.NewValidationError(key, "must be a non-negative integer", raw)
	}
	return n, nil
}
