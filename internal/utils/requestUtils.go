package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// GetPathParam extracts a non-empty path variable, answering 400 itself when
// it is missing.
func GetPathParam(w http.ResponseWriter, r *http.Request, paramName string) (string, error) {
	value := strings.TrimSpace(mux.Vars(r)[paramName])
	if value == "" {
		SendJSONError(w, "Missing "+paramName+" parameter", http.StatusBadRequest)
		return "", errors.New("missing " + paramName + " parameter")
	}
	return value, nil
}
