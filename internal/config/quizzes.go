package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quiz-api/internal/domain"
)

// LoadQuizzes reads a YAML list of quizzes used to seed an empty store.
func LoadQuizzes(path string) ([]domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var quizzes []domain.Quiz
	if err := yaml.Unmarshal(data, &quizzes); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return quizzes, nil
}
