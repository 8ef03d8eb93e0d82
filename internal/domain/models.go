package domain

import (
	"fmt"
	"math"
	"time"
)

// QuestionType selects how a question is graded.
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionBoolean  QuestionType = "boolean"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingle, QuestionMultiple, QuestionBoolean:
		return true
	}
	return false
}

// Question is one entry of a quiz. Options are addressed by their position.
type Question struct {
	Text           string       `json:"question" yaml:"question" bson:"question" validate:"required"`
	Type           QuestionType `json:"type" yaml:"type" bson:"type"`
	Options        []string     `json:"options" yaml:"options" bson:"options" validate:"min=1,dive,required"`
	CorrectAnswers []int        `json:"correctAnswers" yaml:"correctAnswers" bson:"correctAnswers" validate:"min=1"`
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID          string     `json:"id" yaml:"id,omitempty"`
	Slug        string     `json:"slug" yaml:"slug,omitempty"`
	Title       string     `json:"title" yaml:"title" validate:"required"`
	Description string     `json:"description" yaml:"description" validate:"required"`
	Questions   []Question `json:"questions" yaml:"questions" validate:"dive"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"-"`
}

// Normalize fills defaults that the stored form relies on.
func (q *Quiz) Normalize() {
	for i := range q.Questions {
		if q.Questions[i].Type == "" {
			q.Questions[i].Type = QuestionSingle
		}
	}
}

// CheckAnswerIndexes verifies the constraints struct tags cannot express:
// known question types and correct indexes that point at real options.
func (q Quiz) CheckAnswerIndexes() error {
	for i, question := range q.Questions {
		if !question.Type.Valid() {
			return fmt.Errorf("%w: question %d has unknown type %q", ErrValidation, i+1, question.Type)
		}
		for _, idx := range question.CorrectAnswers {
			if idx < 0 || idx >= len(question.Options) {
				return fmt.Errorf("%w: question %d references option %d which does not exist", ErrValidation, i+1, idx)
			}
		}
	}
	return nil
}

// Summary is the list view of a quiz; it never carries answers.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:            q.ID,
		Slug:          q.Slug,
		Title:         q.Title,
		Description:   q.Description,
		QuestionCount: len(q.Questions),
	}
}

// QuizSummary is what non-admin listings expose.
type QuizSummary struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	QuestionCount int    `json:"questionCount"`
}

// Score is the persisted result of one attempt. It is never mutated.
type Score struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	QuizID      string    `json:"quizId"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"maxScore"`
	CompletedAt time.Time `json:"completedAt"`
}

// ScoreFilter narrows score queries; empty fields match everything.
type ScoreFilter struct {
	UserID string
	QuizID string
}

// Matches reports whether s satisfies the filter.
func (f ScoreFilter) Matches(s Score) bool {
	if f.UserID != "" && s.UserID != f.UserID {
		return false
	}
	if f.QuizID != "" && s.QuizID != f.QuizID {
		return false
	}
	return true
}

// ScoreView is a score record joined with the names an admin needs to read it.
type ScoreView struct {
	Score
	Username  string `json:"username"`
	QuizTitle string `json:"quizTitle"`
}

// LeaderboardEntry is derived per request and never persisted.
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"userId"`
	Username         string `json:"username"`
	TotalScore       int    `json:"totalScore"`
	TotalMaxScore    int    `json:"totalMaxScore"`
	QuizzesCompleted int    `json:"quizzesCompleted"`
	Percentage       int    `json:"percentage"`
}

// SubmissionResult is returned to the client after grading.
type SubmissionResult struct {
	Score      int `json:"score"`
	MaxScore   int `json:"maxScore"`
	Percentage int `json:"percentage"`
}

// Percentage returns score/max as a whole percent, rounded half up.
// A zero denominator yields 0.
func Percentage(score, max int) int {
	if max == 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(max)))
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account. PasswordHash never leaves the service layer.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user may manage quizzes and accounts.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
