package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ctoon/ctoon-api/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

// failure builds the uniform failure envelope: {success:false, message}.
func failure(message string) model.AuthResult {
	return model.AuthResult{Success: false, Message: message}
}
