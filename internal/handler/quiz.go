package handler

import (
	"fmt"
	"io"
	"mime/multipart"

	"quizgen/internal/domain"
	"quizgen/internal/dto"
	"quizgen/internal/logger"
	"quizgen/internal/middleware"
	"quizgen/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const fileField = "file"

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz
// @Description Generates multiple choice questions from a topic, an uploaded document (PDF, DOCX, text) or an image.
// @Description num_questions is clamped to [1, 50]. Upstream model errors are relayed with the upstream status.
// @Tags quiz
// @Accept multipart/form-data
// @Produce json
// @Param topic formData string false "Topic or pasted notes"
// @Param num_questions formData int true "Number of questions to generate"
// @Param file formData file false "Context document or image"
// @Success 200 {array} dto.QuizItemResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /generate-quiz [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	numQuestions, _ := c.Locals(middleware.ValidatedNumQuestionsKey).(int)
	topic, _ := c.Locals(middleware.ValidatedTopicKey).(string)

	file, err := readUpload(c)
	if err != nil {
		return err
	}

	items, err := h.service.GenerateQuiz(c.UserContext(), domain.GenerationRequest{
		Topic:        topic,
		NumQuestions: numQuestions,
		File:         file,
	})
	if err != nil {
		return err // mapped by middleware.ErrorHandler
	}

	return c.JSON(dto.NewQuizItemResponses(items))
}

// readUpload returns the optional file part. A request that is not
// multipart, or a multipart request without a usable file part, simply has
// no file.
func readUpload(c *fiber.Ctx) (*domain.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	headers := form.File[fileField]
	if len(headers) == 0 {
		return nil, nil
	}
	fh := headers[0]
	if fh.Filename == "" && fh.Size == 0 {
		return nil, nil
	}

	data, err := readFileHeader(fh)
	if err != nil {
		logger.FromContext(c.UserContext()).Warn("Failed to read uploaded file",
			zap.String("filename", fh.Filename),
			zap.Error(err),
		)
		return nil, domain.NewUnsupportedFileError("Could not read the uploaded file.", err)
	}

	return &domain.UploadedFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
