// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Envelope is the JSON wrapper every API response uses.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes an envelope with the given status.
func WriteJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// OK writes a 200 success envelope with data.
func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// OKMessage writes a 200 success envelope with a message and optional data.
func OKMessage(w http.ResponseWriter, msg string, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: msg, Data: data})
}

// Created writes a 201 success envelope with data.
func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Fail writes a failure envelope with the given status and user message.
func Fail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Envelope{Success: false, Message: msg})
}

// ErrorLogger centralizes error responses so handlers log the internal
// cause while callers only see the safe user-facing message.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogBadRequest logs the cause and responds 400 with userMsg.
func (el *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, internalMsg string, err error, userMsg string) {
	el.log.Warn(internalMsg,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	Fail(w, http.StatusBadRequest, userMsg)
}

// LogServerError logs the cause and responds 500 with userMsg.
func (el *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, internalMsg string, err error, userMsg string) {
	el.log.Error(internalMsg,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	Fail(w, http.StatusInternalServerError, userMsg)
}

// LogForbidden logs the attempt and responds 403 with userMsg.
func (el *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, internalMsg, userMsg string) {
	el.log.Warn(internalMsg, zap.String("path", r.URL.Path))
	Fail(w, http.StatusForbidden, userMsg)
}

// NotFound responds 404 with userMsg. Not logged; missing rows are routine.
func (el *ErrorLogger) NotFound(w http.ResponseWriter, userMsg string) {
	Fail(w, http.StatusNotFound, userMsg)
}
