// internal/app/features/shared/respond/respond.go
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/lifecycle"
	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"go.uber.org/zap"
)

// Kinds used only at the HTTP edge.
const (
	KindBadRequest   = "BadRequest"
	KindUnauthorized = "Unauthorized"
	KindForbidden    = "Forbidden"
)

// errorBody mirrors the failure shape of lifecycle.Result so clients parse
// one envelope for every response.
type errorBody struct {
	OK      bool              `json:"ok"`
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Status maps a lifecycle result to its HTTP status. created selects 201
// for successful creations.
func Status(res lifecycle.Result, created bool) int {
	switch {
	case res.OK && created:
		return http.StatusCreated
	case res.OK:
		return http.StatusOK
	case res.IsValidation():
		return http.StatusUnprocessableEntity
	}
	switch res.Kind {
	case lifecycle.KindGroupNotFound, lifecycle.KindStudentNotFound:
		return http.StatusNotFound
	case lifecycle.KindStaleState, lifecycle.KindConflict:
		return http.StatusConflict
	case lifecycle.KindRemote:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Result writes a lifecycle result.
func Result(w http.ResponseWriter, res lifecycle.Result) {
	JSON(w, Status(res, false), res)
}

// Created writes a lifecycle result, using 201 when it succeeded.
func Created(w http.ResponseWriter, res lifecycle.Result) {
	JSON(w, Status(res, true), res)
}

// Error writes a failure envelope.
func Error(w http.ResponseWriter, status int, kind, message string) {
	JSON(w, status, errorBody{Kind: kind, Message: message})
}

// BadInput writes 400 for an error returned by inputval.DecodeJSON.
func BadInput(w http.ResponseWriter, log *zap.Logger, err error) {
	body := errorBody{Kind: KindBadRequest, Message: "The request could not be read."}
	var fe inputval.FieldErrors
	if errors.As(err, &fe) {
		body.Message = "Some fields are missing or invalid."
		body.Fields = fe
	}
	log.Debug("bad request body", zap.Error(err))
	JSON(w, http.StatusBadRequest, body)
}

// Unauthorized writes 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, KindUnauthorized, "Sign in to continue.")
}

// Forbidden writes 403.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, KindForbidden, message)
}
