package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultMaxJSONBytes limits JSON bodies that do not carry file payloads
const DefaultMaxJSONBytes = 1 << 20

// ParseJSON decodes JSON from the request body into dest, reading at most limit bytes
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any, limit int64) error {
	if limit <= 0 {
		limit = DefaultMaxJSONBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := json.NewDecoder(r.Body).Decode(dest)
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
