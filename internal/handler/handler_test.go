package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"quizgen/internal/domain"
	"quizgen/internal/dto"
	"quizgen/internal/handler"
	"quizgen/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) GenerateQuiz(ctx context.Context, req domain.GenerationRequest) ([]domain.QuizItem, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QuizItem), args.Error(1)
}

type stubCache struct {
	pingErr error
}

func (s stubCache) Get(context.Context, string) (string, error)              { return "", domain.ErrCacheMiss }
func (s stubCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (s stubCache) Ping(context.Context) error                               { return s.pingErr }

// --- Helpers ---

func setupApp(svc *MockQuizService, cache domain.Cache) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestID())
	handler.RegisterRoutes(app, handler.NewQuizHandler(svc), handler.NewHealthHandler(cache))
	return app
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/generate-quiz", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

var sampleItems = []domain.QuizItem{
	{Text: "Capital of France?", Options: []string{"Rome", "Paris", "Madrid", "Berlin"}, Correct: 1, Rationale: "Paris is the capital."},
}

// --- Tests ---

func TestGenerateQuiz_TopicOnly(t *testing.T) {
	svc := &MockQuizService{}
	svc.On("GenerateQuiz", mock.Anything, domain.GenerationRequest{Topic: "France", NumQuestions: 1}).
		Return(sampleItems, nil).Once()

	app := setupApp(svc, nil)
	resp, err := app.Test(multipartRequest(t, map[string]string{"topic": "France", "num_questions": "1"}, nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []dto.QuizItemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Capital of France?", got[0].Text)
	assert.Equal(t, 1, got[0].Correct)
	assert.Equal(t, "Paris", got[0].Options[got[0].Correct])
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
	svc.AssertExpectations(t)
}

func TestGenerateQuiz_WithFile(t *testing.T) {
	svc := &MockQuizService{}
	svc.On("GenerateQuiz", mock.Anything, mock.MatchedBy(func(req domain.GenerationRequest) bool {
		return req.Topic == "" &&
			req.NumQuestions == 5 &&
			req.File != nil &&
			req.File.Filename == "notes.txt" &&
			req.File.ContentType == "text/plain" &&
			string(req.File.Data) == "Cells divide by mitosis."
	})).Return(sampleItems, nil).Once()

	app := setupApp(svc, nil)
	req := multipartRequest(t, map[string]string{"num_questions": "5"},
		&formFile{name: "notes.txt", contentType: "text/plain", data: []byte("Cells divide by mitosis.")})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestGenerateQuiz_MissingNumQuestions(t *testing.T) {
	svc := &MockQuizService{}
	app := setupApp(svc, nil)

	resp, err := app.Test(multipartRequest(t, map[string]string{"topic": "France"}, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	svc.AssertNotCalled(t, "GenerateQuiz", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "validation",
			err:            domain.NewValidationError("Please enter a topic or upload a file."),
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Please enter a topic or upload a file.",
		},
		{
			name:           "unsupported file",
			err:            domain.NewUnsupportedFileError("Error reading PDF: malformed PDF", errors.New("malformed PDF")),
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Error reading PDF: malformed PDF",
		},
		{
			name:           "upstream",
			err:            domain.NewUpstreamError(http.StatusTooManyRequests, "rate limited"),
			expectedStatus: http.StatusTooManyRequests,
			expectedDetail: "rate limited",
		},
		{
			name:           "no valid questions",
			err:            domain.NewNoValidQuestionsError(),
			expectedStatus: http.StatusInternalServerError,
			expectedDetail: "Failed to generate valid questions. Try again.",
		},
		{
			name:           "generation",
			err:            domain.NewGenerationError(errors.New("unexpected end of JSON input")),
			expectedStatus: http.StatusInternalServerError,
			expectedDetail: "Failed to parse quiz from model output",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &MockQuizService{}
			svc.On("GenerateQuiz", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			app := setupApp(svc, nil)
			resp, err := app.Test(multipartRequest(t, map[string]string{"topic": "x", "num_questions": "3"}, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			var body middleware.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.expectedDetail, body.Detail)
		})
	}
}

func TestIndex(t *testing.T) {
	app := setupApp(&MockQuizService{}, nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<title>QuizGen</title>")
	assert.Contains(t, string(body), "/generate-quiz")
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		cache    domain.Cache
		expected dto.HealthResponse
	}{
		{name: "no cache", cache: nil, expected: dto.HealthResponse{Status: "ok"}},
		{name: "cache up", cache: stubCache{}, expected: dto.HealthResponse{Status: "ok", Cache: "ok"}},
		{name: "cache down", cache: stubCache{pingErr: errors.New("dial tcp: refused")}, expected: dto.HealthResponse{Status: "ok", Cache: "unavailable"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := setupApp(&MockQuizService{}, tc.cache)
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var got dto.HealthResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tc.expected, got)
		})
	}
}
