package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"communityapp/services"
)

func TestWriteServiceErrorStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &services.ValidationError{Msg: "bad input"}, http.StatusBadRequest},
		{"not found", &services.NotFoundError{Resource: "community"}, http.StatusNotFound},
		{"configuration", &services.ConfigurationError{ModuleID: "a", Difficulty: "hard"}, http.StatusUnprocessableEntity},
		{"conflict", &services.ConflictError{Err: errors.New("deadlock")}, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteServiceError(rec, tc.err)
			if rec.Code != tc.want {
				t.Fatalf("got status %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestWriteServiceErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteServiceError(rec, errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if body := rec.Body.String(); strings.Contains(body, "10.0.0.1") || !strings.Contains(body, "Server error") {
		t.Fatalf("internal details leaked: %q", body)
	}
}
