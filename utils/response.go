package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"communityapp/services"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteServiceError maps the service error taxonomy onto HTTP statuses.
// Unknown errors become a generic 500 so internals never leak to clients.
func WriteServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		configErr     *services.ConfigurationError
		conflictErr   *services.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: validationErr.Error()})
	case errors.As(err, &notFoundErr):
		WriteJSON(w, http.StatusNotFound, APIResponse{Success: false, Message: notFoundErr.Error()})
	case errors.As(err, &configErr):
		WriteJSON(w, http.StatusUnprocessableEntity, APIResponse{Success: false, Message: configErr.Error()})
	case errors.As(err, &conflictErr):
		WriteJSON(w, http.StatusConflict, APIResponse{Success: false, Message: "Concurrent update, please retry"})
	default:
		WriteJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Server error"})
	}
}
