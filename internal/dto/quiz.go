package dto

import "quizgen/internal/domain"

// QuizItemResponse is one question in the generate-quiz response.
// @Description A multiple choice question. correct is a zero-based index into options.
type QuizItemResponse struct {
	Text      string   `json:"text" example:"What is the capital of France?"`
	Options   []string `json:"options" example:"Rome,Paris,Madrid,Berlin"`
	Correct   int      `json:"correct" example:"1"`
	Rationale string   `json:"rationale" example:"Paris has been the capital of France since 987."`
}

// NewQuizItemResponses converts service output to the wire shape. The order
// of questions is preserved.
func NewQuizItemResponses(items []domain.QuizItem) []QuizItemResponse {
	out := make([]QuizItemResponse, len(items))
	for i, item := range items {
		out[i] = QuizItemResponse{
			Text:      item.Text,
			Options:   item.Options,
			Correct:   item.Correct,
			Rationale: item.Rationale,
		}
	}
	return out
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Cache  string `json:"cache,omitempty" example:"ok"`
}
