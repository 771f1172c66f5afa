package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nasermirzaei89/blotter/contents"
	"github.com/nasermirzaei89/blotter/validation"
)

const maxRequestBodyBytes = 1 << 20

var errTrailingRequestData = errors.New("request body must contain a single JSON value")

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorBody{Error: errorDetail{Field: "", Message: message}})
}

// writeError maps service errors to HTTP statuses. Validation failures carry
// the rejected field and its reason back to the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr     *validation.Error
		authorNotFoundErr *contents.AuthorNotFoundError
		postNotFoundErr   *contents.PostNotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, r, http.StatusUnprocessableEntity, errorBody{
			Error: errorDetail{Field: validationErr.Field, Message: validationErr.Reason},
		})
	case errors.As(err, &authorNotFoundErr):
		writeErrorMessage(w, r, http.StatusNotFound, "Author not found")
	case errors.As(err, &postNotFoundErr):
		writeErrorMessage(w, r, http.StatusNotFound, "Post not found")
	default:
		slog.ErrorContext(r.Context(), "failed to handle request", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorMessage(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errTrailingRequestData
	}

	return nil
}
