package validation

import (
	"strconv"
	"strings"

	"quizgen/internal/domain"
)

// Validator provides request validation functionality
type Validator struct {
	maxTopicChars int
}

const defaultMaxTopicChars = 100000

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{maxTopicChars: defaultMaxTopicChars}
}

// ParseNumQuestions validates the num_questions form field. Only presence
// and integer syntax are checked here; range clamping happens later so that
// 0 or 999 still produce a quiz.
func (v *Validator) ParseNumQuestions(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.NewValidationError("num_questions is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("num_questions must be an integer")
	}
	return n, nil
}

// ValidateTopic rejects topics that could not reasonably fit in a prompt.
// An empty topic is allowed; whether a topic or file is present is decided
// once the upload is known.
func (v *Validator) ValidateTopic(topic string) error {
	if len([]rune(topic)) > v.maxTopicChars {
		return domain.NewValidationError("topic is too long")
	}
	return nil
}
