package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pdfcollab/internal/http/middleware"
	"pdfcollab/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps service-layer sentinel errors onto the error envelope.
// NotFound deliberately covers both "does not exist" and "not visible to you";
// FORBIDDEN appears only on the explicit email-mismatch and proxy-token paths.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "you are not authorized to view this document")
	case errors.Is(err, service.ErrAlreadyShared):
		return writeError(c, fiber.StatusBadRequest, "ALREADY_SHARED", "document already shared with this user")
	case errors.Is(err, service.ErrNotPDF):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FILE_TYPE", "only PDF files are allowed")
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", "file size exceeds maximum limit")
	case errors.Is(err, service.ErrTextRequired):
		return writeError(c, fiber.StatusBadRequest, "TEXT_REQUIRED", "comment text is required")
	case errors.Is(err, service.ErrGuestNameRequired):
		return writeError(c, fiber.StatusBadRequest, "GUEST_NAME_REQUIRED", "guest name is required")
	case errors.Is(err, service.ErrEmailsRequired):
		return writeError(c, fiber.StatusBadRequest, "EMAILS_REQUIRED", "valid email addresses are required")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "missing or invalid credentials")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "forbidden")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
