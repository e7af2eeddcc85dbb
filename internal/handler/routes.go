package handler

import (
	"quizgen/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// RegisterRoutes mounts every public route on app.
func RegisterRoutes(app *fiber.App, quizHandler *QuizHandler, healthHandler *HealthHandler) {
	validationMiddleware := middleware.NewValidationMiddleware()

	app.Get("/", Index)
	app.Get("/healthz", healthHandler.Health)
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Post("/generate-quiz", validationMiddleware.ValidateGenerateQuizForm(), quizHandler.GenerateQuiz)
}
