package service

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"quizgen/internal/domain"
	"quizgen/internal/logger"

	"go.uber.org/zap"
)

// QuizService defines the quiz generation use case.
type QuizService interface {
	GenerateQuiz(ctx context.Context, req domain.GenerationRequest) ([]domain.QuizItem, error)
}

// quizService implements QuizService. It holds no per-request state, so one
// instance serves all requests concurrently.
type quizService struct {
	assembler *PromptAssembler
	model     domain.ChatModel
	newRand   func() *rand.Rand
}

// NewQuizService wires the assembler and the model endpoint together.
func NewQuizService(assembler *PromptAssembler, model domain.ChatModel) QuizService {
	return &quizService{
		assembler: assembler,
		model:     model,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// GenerateQuiz performs exactly one model call. Errors are returned as-is
// for the HTTP layer to map; nothing is retried and no partial result is
// ever returned.
func (s *quizService) GenerateQuiz(ctx context.Context, req domain.GenerationRequest) ([]domain.QuizItem, error) {
	l := logger.FromContext(ctx)

	asm, err := s.assembler.Assemble(ctx, req)
	if err != nil {
		return nil, err
	}

	l.Info("Requesting quiz from model",
		zap.Int("num_questions", asm.NumQuestions),
		zap.Bool("has_topic", strings.TrimSpace(req.Topic) != ""),
		zap.String("content_kind", string(asm.Kind)),
		zap.String("extractor", asm.Strategy),
		zap.Int("context_chars", asm.ContextChars),
	)

	start := time.Now()
	raw, err := s.model.Complete(ctx, asm.Messages)
	if err != nil {
		l.Error("Model call failed", zap.Duration("latency", time.Since(start)), zap.Error(err))
		return nil, err
	}
	l.Debug("Raw model reply received", zap.Int("reply_chars", len(raw)), zap.Duration("latency", time.Since(start)))

	items, stats, err := normalizeQuiz(raw, s.newRand())
	if err != nil {
		l.Error("Model reply could not be normalized",
			zap.Int("parsed", stats.Parsed),
			zap.String("reply_head", TruncateRunes(raw, 200)),
			zap.Error(err),
		)
		return nil, err
	}

	l.Info("Quiz generated",
		zap.Int("requested", asm.NumQuestions),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped", stats.Dropped),
		zap.Duration("latency", time.Since(start)),
	)
	return items, nil
}
