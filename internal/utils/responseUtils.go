package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// RespondWithJSON writes payload as a JSON body with the given status.
func RespondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Error marshalling JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"failed to encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// SendJSONError writes {"detail": message}.
func SendJSONError(w http.ResponseWriter, message string, status int) {
	RespondWithJSON(w, status, map[string]string{"detail": message})
}

// RespondWithMessage writes {"message": message}.
func RespondWithMessage(w http.ResponseWriter, status int, message string) {
	RespondWithJSON(w, status, map[string]string{"message": message})
}
