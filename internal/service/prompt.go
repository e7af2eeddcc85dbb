package service

import (
	"context"
	"fmt"
	"strings"

	"quizgen/internal/adapter/extractor"
	"quizgen/internal/domain"
	"quizgen/internal/logger"

	"go.uber.org/zap"
)

// DefaultMaxContextChars bounds how much extracted text reaches the model.
const DefaultMaxContextChars = 25000

const systemInstruction = `You are a strict JSON Quiz Generator.
Task: Create a multiple choice quiz.
Use only the provided CONTEXT text (from the uploaded file or text topic) as your source of truth.
Do not invent facts that are not present in the CONTEXT.
OUTPUT RULES:
1. Return ONLY valid JSON. No markdown, no code fences.
2. Return a JSON array of objects with the fields "text" (string), "options" (array of strings), "correct" (zero-based index into options) and "rationale" (string).
3. Structure: [{"text": "Question?", "options": ["A", "B", "C", "D"], "correct": 0, "rationale": "Why?"}]`

// ContextExtractor turns an uploaded document into prompt context.
type ContextExtractor interface {
	Extract(ctx context.Context, kind extractor.Kind, data []byte) (*extractor.Result, error)
}

// PromptAssembler builds the system and user turns for one request.
type PromptAssembler struct {
	extractor ContextExtractor
	maxChars  int
}

func NewPromptAssembler(ex ContextExtractor, maxChars int) *PromptAssembler {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}
	return &PromptAssembler{extractor: ex, maxChars: maxChars}
}

// Assembly is the outcome of Assemble: the messages plus what was decided
// on the way, for logging.
type Assembly struct {
	Messages     []domain.ChatMessage
	NumQuestions int
	Kind         extractor.Kind
	Strategy     string
	ContextChars int
}

// Assemble validates the request and produces the message sequence.
func (p *PromptAssembler) Assemble(ctx context.Context, req domain.GenerationRequest) (*Assembly, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" && req.File == nil {
		return nil, domain.NewValidationError("Please enter a topic or upload a file.")
	}

	n := domain.ClampQuestionCount(req.NumQuestions)
	instruction := userInstruction(topic, n)

	asm := &Assembly{
		NumQuestions: n,
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Text: systemInstruction},
		},
	}

	if req.File == nil {
		asm.Messages = append(asm.Messages, domain.ChatMessage{Role: domain.RoleUser, Text: instruction})
		return asm, nil
	}

	asm.Kind = extractor.Detect(req.File)
	if asm.Kind == extractor.KindImage {
		asm.Messages = append(asm.Messages, domain.ChatMessage{
			Role: domain.RoleUser,
			Text: instruction,
			Image: &domain.ImageAttachment{
				MIMEType: extractor.ImageMIMEType(req.File),
				Data:     req.File.Data,
			},
		})
		return asm, nil
	}

	res, err := p.extractor.Extract(ctx, asm.Kind, req.File.Data)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to extract text from upload",
			zap.String("filename", req.File.Filename),
			zap.String("content_type", req.File.ContentType),
			zap.String("kind", string(asm.Kind)),
			zap.Error(err),
		)
		return nil, err
	}

	contextText := TruncateRunes(res.Text, p.maxChars)
	asm.Strategy = res.Strategy
	asm.ContextChars = len([]rune(contextText))
	asm.Messages = append(asm.Messages, domain.ChatMessage{
		Role: domain.RoleUser,
		Text: fmt.Sprintf("%s\n\n%s:\n%s", instruction, res.Label, contextText),
	})
	return asm, nil
}

func userInstruction(topic string, n int) string {
	if topic != "" {
		return fmt.Sprintf("Generate %d questions about: %s", n, topic)
	}
	return fmt.Sprintf("Generate %d questions based ENTIRELY on the file content below. "+
		"Do not simply copy and paste the text from the file, but make the quiz based on concepts within the text.", n)
}

// TruncateRunes keeps at most max characters of s.
func TruncateRunes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
