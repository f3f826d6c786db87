package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// Every failure body carries at least a message; the two pipeline failure
// modes additionally carry a machine-readable code.
const (
	genericServerError = "Something went wrong. Please try again."
	configErrorMessage = "Server configuration error."
	authRequiredError  = "Authentication required."
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}

// writeRaw relays an upstream body verbatim. An empty body (DELETEs mostly)
// becomes a bare status, never a decode error.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	if len(body) == 0 {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
