package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
)

var errInvalidSceneCount = errors.New("scene_count must be between 0 and 20")

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func writeAccepted(w http.ResponseWriter, execID string) {
	writeJSON(w, http.StatusAccepted, map[string]string{
		"execution_id": execID,
		"message":      "Story processing started",
	})
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
