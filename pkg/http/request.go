package http

import (
	"net/http"
	"strconv"

	apperrors "roomly/pkg/errors"
)

// ExtractInt64 reads an optional integer query parameter. The boolean is false
// when the parameter is absent.
func ExtractInt64(r *http.Request, name string) (int64, bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, false, nil
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return v, true, nil
}

func ExtractString(r *http.Request, name string) string {
	return r.URL.Query().Get(name)
}
