package response

import (
	"encoding/json"
	"net/http"
)

// JSON encodes data before writing anything, so an unencodable value
// becomes a bare 500 rather than a truncated body under a success status.
// A nil data writes only the status.
func JSON(w http.ResponseWriter, status int, data any) {
	if data == nil {
		w.WriteHeader(status)
		return
	}
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
