package service

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"quizgen/internal/domain"
)

// NormalizeStats reports what happened to the parsed elements.
type NormalizeStats struct {
	Parsed  int
	Kept    int
	Dropped int
}

// NormalizeQuiz turns a raw model reply into validated quiz items with
// shuffled options. It is pure apart from rng and never touches the network.
func NormalizeQuiz(raw string, rng *rand.Rand) ([]domain.QuizItem, error) {
	items, _, err := normalizeQuiz(raw, rng)
	return items, err
}

func normalizeQuiz(raw string, rng *rand.Rand) ([]domain.QuizItem, NormalizeStats, error) {
	var stats NormalizeStats

	elements, err := parseQuizArray(ExtractJSONArray(raw))
	if err != nil {
		return nil, stats, domain.NewGenerationError(err)
	}
	stats.Parsed = len(elements)

	items := make([]domain.QuizItem, 0, len(elements))
	for _, el := range elements {
		item, ok := validateQuizElement(el)
		if !ok {
			continue
		}
		shuffled, ok := shuffleOptions(item, rng)
		if !ok {
			continue
		}
		items = append(items, shuffled)
	}
	stats.Kept = len(items)
	stats.Dropped = stats.Parsed - stats.Kept

	if len(items) == 0 {
		return nil, stats, domain.NewNoValidQuestionsError()
	}
	return items, stats, nil
}

// ExtractJSONArray returns the span from the first '[' to the last ']'.
// Without such a pair it strips markdown code fences instead.
func ExtractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start != -1 && end > start {
		return raw[start : end+1]
	}
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	return strings.TrimSpace(clean)
}

// parseQuizArray decodes the payload into a list of raw elements. An object
// with a "questions" field is unwrapped first.
func parseQuizArray(payload string) ([]json.RawMessage, error) {
	var top any
	if err := json.Unmarshal([]byte(payload), &top); err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w", err)
	}

	if obj, ok := top.(map[string]any); ok {
		if questions, found := obj["questions"]; found {
			top = questions
		}
	}

	list, ok := top.([]any)
	if !ok {
		return nil, fmt.Errorf("model output is not a JSON array (got %T)", top)
	}

	out := make([]json.RawMessage, 0, len(list))
	for _, el := range list {
		b, err := json.Marshal(el)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// validateQuizElement applies the structural and bounds checks. Anything
// that fails is dropped without an error.
func validateQuizElement(raw json.RawMessage) (domain.QuizItem, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.QuizItem{}, false
	}

	optionsRaw, hasOptions := fields["options"]
	correctRaw, hasCorrect := fields["correct"]
	if !hasOptions || !hasCorrect {
		return domain.QuizItem{}, false
	}

	var options []string
	if err := json.Unmarshal(optionsRaw, &options); err != nil || options == nil {
		return domain.QuizItem{}, false
	}
	if len(options) < 2 {
		return domain.QuizItem{}, false
	}

	correct, ok := parseIndex(correctRaw)
	if !ok || correct < 0 || correct >= len(options) {
		return domain.QuizItem{}, false
	}

	item := domain.QuizItem{Options: options, Correct: correct}
	if textRaw, ok := fields["text"]; ok {
		_ = json.Unmarshal(textRaw, &item.Text)
	}
	if rationaleRaw, ok := fields["rationale"]; ok {
		_ = json.Unmarshal(rationaleRaw, &item.Rationale)
	}
	return item, true
}

// parseIndex accepts integral JSON numbers, including forms like 1.0.
func parseIndex(raw json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// shuffleOptions permutes the options and re-points Correct at the text that
// was correct before. With duplicate option texts the first match wins.
func shuffleOptions(item domain.QuizItem, rng *rand.Rand) (domain.QuizItem, bool) {
	correctText := item.Options[item.Correct]

	opts := make([]string, len(item.Options))
	copy(opts, item.Options)
	rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })

	newIdx := -1
	for i, o := range opts {
		if o == correctText {
			newIdx = i
			break
		}
	}
	if newIdx == -1 {
		return domain.QuizItem{}, false
	}

	item.Options = opts
	item.Correct = newIdx
	return item, true
}
