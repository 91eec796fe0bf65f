package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeRejection reports a business rejection. The request itself was
// well-formed and handled, so the status stays 200 and the client reads
// success=false.
func writeRejection(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": false,
		"message": msg,
	})
}
