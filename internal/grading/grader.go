// Package grading scores a submission against a quiz. Everything here is
// pure: callers load the quiz and persist the resulting score.
package grading

import (
	"slices"

	"quiz-api/internal/domain"
)

// Result is the outcome of grading one submission.
type Result struct {
	Score    int
	MaxScore int
}

// Percentage is the rounded share of correct answers, 0 for an empty quiz.
func (r Result) Percentage() int {
	return domain.Percentage(r.Score, r.MaxScore)
}

// Grade awards one point per question whose answer exactly matches the
// stored correct answers. MaxScore is always the question count; answers
// beyond the last question are ignored.
func Grade(quiz domain.Quiz, answers []domain.Answer) Result {
	result := Result{MaxScore: len(quiz.Questions)}
	for i, question := range quiz.Questions {
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		if correct(question, answers[i]) {
			result.Score++
		}
	}
	return result
}

func correct(q domain.Question, a domain.Answer) bool {
	if len(q.CorrectAnswers) == 0 {
		return false
	}
	switch q.Type {
	case domain.QuestionSingle, "":
		if v, ok := a.(domain.SingleAnswer); ok {
			return v.Index == q.CorrectAnswers[0]
		}
	case domain.QuestionBoolean:
		if v, ok := a.(domain.BooleanAnswer); ok {
			return v.Index == q.CorrectAnswers[0]
		}
	case domain.QuestionMultiple:
		if v, ok := a.(domain.MultipleAnswer); ok {
			return sameSelection(v.Indexes, q.CorrectAnswers)
		}
	}
	return false
}

// sameSelection compares both sides as sorted sequences: order does not
// matter, but every element (duplicates included) must line up.
func sameSelection(submitted, expected []int) bool {
	if len(submitted) != len(expected) {
		return false
	}
	s := slices.Clone(submitted)
	e := slices.Clone(expected)
	slices.Sort(s)
	slices.Sort(e)
	return slices.Equal(s, e)
}
