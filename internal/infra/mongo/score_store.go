package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"quiz-api/internal/domain"
)

// ScoreStore implements app.ScoreRepository on the scores collection.
// userId and quizId are stored as ObjectIDs referencing users and quizzes.
type ScoreStore struct {
	collection *mongo.Collection
}

func NewScoreStore(db *mongo.Database) *ScoreStore {
	return &ScoreStore{collection: db.Collection(scoresCollection)}
}

func (s *ScoreStore) Insert(ctx context.Context, score *domain.Score) error {
	userID, ok := objectID(score.UserID)
	if !ok {
		return fmt.Errorf("%w: malformed user id %q", domain.ErrValidation, score.UserID)
	}
	quizID, ok := objectID(score.QuizID)
	if !ok {
		return fmt.Errorf("%w: malformed quiz id %q", domain.ErrValidation, score.QuizID)
	}
	doc := scoreDocument{
		ID:          bson.NewObjectID(),
		UserID:      userID,
		QuizID:      quizID,
		Score:       score.Score,
		MaxScore:    score.MaxScore,
		CompletedAt: score.CompletedAt,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	score.ID = doc.ID.Hex()
	return nil
}

func (s *ScoreStore) List(ctx context.Context, filter domain.ScoreFilter) ([]domain.Score, error) {
	query := bson.M{}
	if filter.UserID != "" {
		oid, ok := objectID(filter.UserID)
		if !ok {
			return []domain.Score{}, nil
		}
		query["userId"] = oid
	}
	if filter.QuizID != "" {
		oid, ok := objectID(filter.QuizID)
		if !ok {
			return []domain.Score{}, nil
		}
		query["quizId"] = oid
	}

	cursor, err := s.collection.Find(ctx, query, options.Find().SetSort(ascending("completedAt")))
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	var docs []scoreDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode scores: %w", err)
	}
	scores := make([]domain.Score, 0, len(docs))
	for _, d := range docs {
		scores = append(scores, scoreFromDocument(d))
	}
	return scores, nil
}

func (s *ScoreStore) DeleteByUser(ctx context.Context, userID string) error {
	return s.deleteMany(ctx, "userId", userID)
}

func (s *ScoreStore) DeleteByQuiz(ctx context.Context, quizID string) error {
	return s.deleteMany(ctx, "quizId", quizID)
}

func (s *ScoreStore) deleteMany(ctx context.Context, field, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	if _, err := s.collection.DeleteMany(ctx, bson.M{field: oid}); err != nil {
		return fmt.Errorf("failed to delete scores by %s: %w", field, err)
	}
	return nil
}
