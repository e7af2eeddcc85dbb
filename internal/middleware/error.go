package middleware

import (
	"errors"
	"net/http"

	"quizgen/internal/domain"
	"quizgen/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the standard error response structure. Detail
// repeats Message for clients that only read "detail".
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_ERROR"`
	Message string `json:"message" example:"Please enter a topic or upload a file."`
	Status  int    `json:"status" example:"400"`
	Detail  string `json:"detail" example:"Please enter a topic or upload a file."`
}

func newErrorResponse(code string, message string, status int) ErrorResponse {
	return ErrorResponse{Code: code, Message: message, Status: status, Detail: message}
}

// ErrorHandler is a centralized error handler installed through
// fiber.Config.ErrorHandler.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		l := logger.FromContext(c.UserContext())

		// Handle domain errors
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := mapDomainErrorToHTTPStatus(domainErr)
			fields := []zap.Field{
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", statusCode),
				zap.String("path", c.Path()),
			}
			if domainErr.Cause != nil {
				fields = append(fields, zap.Error(domainErr.Cause))
			}
			if statusCode >= http.StatusInternalServerError {
				l.Error("Domain error occurred", fields...)
			} else {
				l.Warn("Domain error occurred", fields...)
			}

			return c.Status(statusCode).JSON(newErrorResponse(string(domainErr.Code), domainErr.Message, statusCode))
		}

		// Handle fiber errors
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			l.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
				zap.String("path", c.Path()),
			)
			return c.Status(fiberErr.Code).JSON(newErrorResponse("HTTP_ERROR", fiberErr.Message, fiberErr.Code))
		}

		// Handle unknown errors
		l.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		return c.Status(http.StatusInternalServerError).JSON(
			newErrorResponse(string(domain.CodeInternal), "Internal server error", http.StatusInternalServerError))
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeValidation, domain.CodeUnsupportedFile:
		return http.StatusBadRequest
	case domain.CodeUpstream:
		if err.Status >= 400 && err.Status <= 599 {
			return err.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
