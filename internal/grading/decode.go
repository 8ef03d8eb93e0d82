package grading

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"quiz-api/internal/domain"
)

// DecodeAnswers turns the raw "answers" payload into typed answers, one per
// question, using each question's declared type to pick the variant.
// Anything that is not a list, or an entry that does not fit its question,
// becomes nil so it earns no credit instead of failing the submission.
func DecodeAnswers(quiz domain.Quiz, raw json.RawMessage) []domain.Answer {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	answers := make([]domain.Answer, len(quiz.Questions))
	for i, question := range quiz.Questions {
		if i >= len(items) {
			break
		}
		answers[i] = decodeOne(question.Type, items[i])
	}
	return answers
}

func decodeOne(t domain.QuestionType, raw json.RawMessage) domain.Answer {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	switch t {
	case domain.QuestionSingle, "":
		if idx, ok := toIndex(unwrapSingleton(raw)); ok {
			return domain.SingleAnswer{Index: idx}
		}
	case domain.QuestionBoolean:
		if idx, ok := toIndex(unwrapSingleton(raw)); ok {
			return domain.BooleanAnswer{Index: idx}
		}
	case domain.QuestionMultiple:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		indexes := make([]int, 0, len(items))
		for _, item := range items {
			idx, ok := toIndex(item)
			if !ok {
				return nil
			}
			indexes = append(indexes, idx)
		}
		return domain.MultipleAnswer{Indexes: indexes}
	}
	return nil
}

// unwrapSingleton strips one-element lists, so [1] and [[1]] both read as 1.
// Clients that keep every selection as a list send single choices this way.
func unwrapSingleton(raw json.RawMessage) json.RawMessage {
	for {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil || len(items) != 1 {
			return raw
		}
		raw = bytes.TrimSpace(items[0])
	}
}

// toIndex accepts a JSON number or a numeric string holding an integral value.
func toIndex(raw json.RawMessage) (int, bool) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, false
	}

	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
