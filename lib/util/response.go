package util

import (
	"encoding/json"
	"net/http"
)

// WireError is the {"__type", "message"} body every error response carries.
type WireError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}

// WriteJSON marshals body and writes it with statusCode, defaulting to 500
// on marshal failure so callers never need to check an error return.
func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"__type":"UnsupportedError","message":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/x-amz-json-1.1")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}

// WriteWireError writes the documented {"__type", "message"} error shape.
func WriteWireError(w http.ResponseWriter, statusCode int, typ, message string) {
	WriteJSON(w, statusCode, WireError{Type: typ, Message: message})
}
