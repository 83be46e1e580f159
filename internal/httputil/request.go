package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodySize caps request bodies. Document content is the largest payload
// and 10MB of text is far beyond any real document.
const maxBodySize = 10 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// The body size is limited before decoding; w is needed so the limiter can
// produce a proper 413 response.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
