package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"quizgen/internal/domain"
	"quizgen/internal/logger"
	"quizgen/internal/middleware"
	"quizgen/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	return app
}

func decodeError(t *testing.T, resp *http.Response) middleware.ErrorResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "validation",
			err:            domain.NewValidationError("Please enter a topic or upload a file."),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedMsg:    "Please enter a topic or upload a file.",
		},
		{
			name:           "unsupported file",
			err:            domain.NewUnsupportedFileError("DOCX parsing failed. Try PDF or Text.", errors.New("zip: not a valid zip file")),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "UNSUPPORTED_FILE",
			expectedMsg:    "DOCX parsing failed. Try PDF or Text.",
		},
		{
			name:           "upstream status passes through",
			err:            domain.NewUpstreamError(http.StatusPaymentRequired, `{"error":"Insufficient credits"}`),
			expectedStatus: http.StatusPaymentRequired,
			expectedCode:   "UPSTREAM_ERROR",
			expectedMsg:    `{"error":"Insufficient credits"}`,
		},
		{
			name:           "upstream without usable status",
			err:            &domain.DomainError{Code: domain.CodeUpstream, Message: "connection reset"},
			expectedStatus: http.StatusBadGateway,
			expectedCode:   "UPSTREAM_ERROR",
			expectedMsg:    "connection reset",
		},
		{
			name:           "generation",
			err:            domain.NewGenerationError(errors.New("invalid character")),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "GENERATION_ERROR",
			expectedMsg:    "Failed to parse quiz from model output",
		},
		{
			name:           "no valid questions",
			err:            domain.NewNoValidQuestionsError(),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "NO_VALID_QUESTIONS",
			expectedMsg:    "Failed to generate valid questions. Try again.",
		},
		{
			name:           "fiber error",
			err:            fiber.ErrRequestEntityTooLarge,
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedCode:   "HTTP_ERROR",
			expectedMsg:    fiber.ErrRequestEntityTooLarge.Message,
		},
		{
			name:           "unknown",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
			expectedMsg:    "Internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/fail", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tc.expectedCode, body.Code)
			assert.Equal(t, tc.expectedMsg, body.Message)
			assert.Equal(t, tc.expectedMsg, body.Detail)
			assert.Equal(t, tc.expectedStatus, body.Status)
			assert.True(t, util.IsULID(resp.Header.Get(middleware.RequestIDHeader)))
		})
	}
}

func TestRequestID(t *testing.T) {
	app := newTestApp()
	var seen string
	app.Get("/ping", func(c *fiber.Ctx) error {
		seen = logger.RequestID(c.UserContext())
		assert.Equal(t, seen, c.Locals(middleware.RequestIDKey))
		return c.SendString("pong")
	})

	t.Run("generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
		require.NoError(t, err)
		id := resp.Header.Get(middleware.RequestIDHeader)
		assert.True(t, util.IsULID(id))
		assert.Equal(t, id, seen)
	})

	t.Run("caller supplied ulid is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(middleware.RequestIDHeader, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", resp.Header.Get(middleware.RequestIDHeader))
	})

	t.Run("garbage is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(middleware.RequestIDHeader, "<script>")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		id := resp.Header.Get(middleware.RequestIDHeader)
		assert.NotEqual(t, "<script>", id)
		assert.True(t, util.IsULID(id))
	})
}

func TestValidateGenerateQuizForm(t *testing.T) {
	vm := middleware.NewValidationMiddleware()

	newApp := func(captured *int) *fiber.App {
		app := newTestApp()
		app.Post("/generate-quiz", vm.ValidateGenerateQuizForm(), func(c *fiber.Ctx) error {
			*captured = c.Locals(middleware.ValidatedNumQuestionsKey).(int)
			return c.SendStatus(http.StatusOK)
		})
		return app
	}

	postForm := func(app *fiber.App, form url.Values) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/generate-quiz", strings.NewReader(form.Encode()))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	t.Run("valid", func(t *testing.T) {
		var n int
		resp := postForm(newApp(&n), url.Values{"topic": {"owls"}, "num_questions": {"999"}})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 999, n)
	})

	t.Run("missing num_questions", func(t *testing.T) {
		var n int
		resp := postForm(newApp(&n), url.Values{"topic": {"owls"}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "num_questions is required", decodeError(t, resp).Message)
	})

	t.Run("non integer num_questions", func(t *testing.T) {
		var n int
		resp := postForm(newApp(&n), url.Values{"topic": {"owls"}, "num_questions": {"lots"}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Code)
	})
}
