// Package httpkit provides shared HTTP helpers: response envelopes,
// error mapping, and request middleware used by all feature modules.
package httpkit

import (
	"errors"
	"log/slog"
	"net/http"

	"stockquote_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// OK writes a 200 response with the given payload.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// NoContent writes a 204 with an empty body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error response with an explicit status and message.
func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// HandleError maps an error to an HTTP response and reports whether an
// error was written. Typed errors from apperr carry their own status
// code and a message safe to expose; anything else becomes an opaque
// 500. Handlers use it as:
//
//	if httpkit.HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperr.KindInternal || appErr.Kind == apperr.KindUnknown {
			slog.Error("internal error", "error", err, "path", c.Request.URL.Path)
			Error(c, http.StatusInternalServerError, "an unexpected error occurred", nil)
			return true
		}
		Error(c, appErr.HTTPStatus(), appErr.Message, appErr.Details)
		return true
	}

	slog.Error("unhandled error", "error", err, "path", c.Request.URL.Path)
	Error(c, http.StatusInternalServerError, "an unexpected error occurred", nil)
	return true
}
