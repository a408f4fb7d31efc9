package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorBody is the JSON body of every error response, e.g. {"error":"Not found"}.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is the JSON body of updates and deletes that return no resource.
type MessageBody struct {
	Message string `json:"message"`
}

// Message builds a MessageBody.
func Message(msg string) MessageBody {
	return MessageBody{Message: msg}
}

// WriteJSON serialises v as JSON and writes it to w with the given HTTP status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WriteJSON: failed to encode response: %v", err)
	}
}
