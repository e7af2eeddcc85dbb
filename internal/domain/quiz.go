package domain

import (
	"context"
	"encoding/base64"
	"fmt"
)

const (
	MinQuestions = 1
	MaxQuestions = 50
)

// QuizItem is one multiple-choice question as returned to the client.
type QuizItem struct {
	Text      string   `json:"text"`
	Options   []string `json:"options"`
	Correct   int      `json:"correct"`
	Rationale string   `json:"rationale"`
}

// CorrectOption returns the option text marked correct, or "" when the
// index is out of range.
func (q QuizItem) CorrectOption() string {
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return ""
	}
	return q.Options[q.Correct]
}

// UploadedFile is a file received with a generation request.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// GenerationRequest carries everything needed to produce one quiz.
type GenerationRequest struct {
	Topic        string
	NumQuestions int
	File         *UploadedFile
}

// ClampQuestionCount bounds n to [MinQuestions, MaxQuestions].
func ClampQuestionCount(n int) int {
	if n < MinQuestions {
		return MinQuestions
	}
	if n > MaxQuestions {
		return MaxQuestions
	}
	return n
}

type ChatRole string

const (
	RoleSystem ChatRole = "system"
	RoleUser   ChatRole = "user"
)

// ImageAttachment is an inline image sent alongside a user message.
type ImageAttachment struct {
	MIMEType string
	Data     []byte
}

// DataURL renders the image as a base64 data URL.
func (a ImageAttachment) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", a.MIMEType, base64.StdEncoding.EncodeToString(a.Data))
}

// ChatMessage is one role-tagged turn sent to the model.
type ChatMessage struct {
	Role  ChatRole
	Text  string
	Image *ImageAttachment
}

// ChatModel is the external model endpoint: prompt in, free text out.
// Implementations return an UpstreamError for non-success responses.
type ChatModel interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}
