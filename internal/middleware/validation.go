package middleware

import (
	"quizgen/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	ValidatedNumQuestionsKey = "validated_num_questions"
	ValidatedTopicKey        = "validated_topic"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateGenerateQuizForm checks the scalar form fields of POST
// /generate-quiz and stores the parsed values in locals.
func (vm *ValidationMiddleware) ValidateGenerateQuizForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := vm.validator.ParseNumQuestions(c.FormValue("num_questions"))
		if err != nil {
			return err // This will be handled by ErrorHandler middleware
		}

		topic := c.FormValue("topic")
		if err := vm.validator.ValidateTopic(topic); err != nil {
			return err
		}

		c.Locals(ValidatedNumQuestionsKey, n)
		c.Locals(ValidatedTopicKey, topic)
		return c.Next()
	}
}
