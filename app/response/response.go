// Package response writes the JSON envelope shared by every API response:
// {"success": bool, "message": string, ...payload}.
package response

import (
	"encoding/json"
	"net/http"
)

// Fields is the payload merged into a success envelope.
type Fields map[string]interface{}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes {"success": true, "message": message, ...fields}.
func Success(w http.ResponseWriter, status int, message string, fields Fields) {
	body := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	if message != "" {
		body["message"] = message
	}
	JSON(w, status, body)
}

// Error writes {"success": false, "message": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
