package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/IssueKeeper/internal/validate"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeValidation answers 400 with the joined message and a per-field map.
// It reports false when err is not a validation failure.
func writeValidation(w http.ResponseWriter, err error) bool {
	var errs validate.Errors
	if !errors.As(err, &errs) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"message": errs.Error(),
		"errors":  errs,
	})
	return true
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
