package handler

import (
	"errors"
	"net/http"

	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/httputil"
)

// okResponse is the body of mutations that return no resource
type okResponse struct {
	OK bool `json:"ok"`
}

// decodeJSON parses the body and reports malformed input as a validation
// error. Oversized bodies keep their *http.MaxBytesError so they map to 413.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any, limit int64) error {
	err := httputil.ParseJSON(w, r, dest, limit)
	if err == nil {
		return nil
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return &domain.ValidationError{Message: err.Error()}
}

// queryID returns a pointer to the named query value, or nil if it is empty
func queryID(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}

// folderCode reads the access code from the X-Folder-Code header, falling
// back to the code query parameter.
func folderCode(r *http.Request) string {
	if code := r.Header.Get("X-Folder-Code"); code != "" {
		return code
	}
	return r.URL.Query().Get("code")
}
