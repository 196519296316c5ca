// Package jsonutil writes the JSON responses used by every /api handler.
//
// Error helpers take the request so the message is also copied into the
// request's ledger entry.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/stratawell/internal/app/system/ledger"
)

// MaxBodyBytes caps request bodies read by Decode.
const MaxBodyBytes = 1 << 20

// ErrTrailingData is returned by Decode when the body holds more than one
// JSON value.
var ErrTrailingData = errors.New("request body must contain a single JSON value")

// JSON writes v with the given status code. A nil v writes JSON null.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 OK JSON response.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Error writes {"error": message} and records message in the ledger.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	ledger.SetErrorMessage(r.Context(), message)
	JSON(w, status, map[string]string{"error": message})
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusBadRequest, message)
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusNotFound, message)
}

// InternalError writes a 500 error response. Log the cause separately; the
// message is returned to the client as is.
func InternalError(w http.ResponseWriter, r *http.Request, message string) {
	ledger.SetErrorClass(r.Context(), "internal")
	Error(w, r, http.StatusInternalServerError, message)
}

// ValidationError writes a 400 response with per-field messages:
//
//	{"error": "validation failed", "fields": {"date": "must be a YYYY-MM-DD date"}}
func ValidationError(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	ledger.SetErrorClass(r.Context(), "validation")
	ledger.SetErrorMessage(r.Context(), fmt.Sprintf("validation failed: %d field(s)", len(fields)))
	JSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}

// Decode reads a single JSON value from the request body into v. Bodies over
// MaxBodyBytes are rejected.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	ledger.StartTiming(r.Context(), ledger.PhaseDecode)
	defer ledger.EndTiming(r.Context())

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ErrTrailingData
	}
	return nil
}
