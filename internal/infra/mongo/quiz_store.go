package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"quiz-api/internal/domain"
)

// QuizStore implements app.QuizRepository on the quizzes collection.
type QuizStore struct {
	collection *mongo.Collection
}

func NewQuizStore(db *mongo.Database) *QuizStore {
	return &QuizStore{collection: db.Collection(quizzesCollection)}
}

func (s *QuizStore) List(ctx context.Context) ([]domain.Quiz, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(ascending("createdAt")))
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	var docs []quizDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(docs))
	for _, d := range docs {
		quizzes = append(quizzes, quizFromDocument(d))
	}
	return quizzes, nil
}

func (s *QuizStore) Get(ctx context.Context, id string) (domain.Quiz, error) {
	oid, ok := objectID(id)
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	var doc quizDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("failed to get quiz %s: %w", id, err)
	}
	return quizFromDocument(doc), nil
}

func (s *QuizStore) Create(ctx context.Context, quiz *domain.Quiz) error {
	doc := quizToDocument(*quiz)
	doc.ID = bson.NewObjectID()
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	quiz.ID = doc.ID.Hex()
	return nil
}

func (s *QuizStore) Update(ctx context.Context, quiz domain.Quiz) error {
	oid, ok := objectID(quiz.ID)
	if !ok {
		return domain.ErrQuizNotFound
	}
	doc := quizToDocument(quiz)
	update := bson.M{"$set": bson.M{
		"slug":        doc.Slug,
		"title":       doc.Title,
		"description": doc.Description,
		"questions":   doc.Questions,
	}}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update quiz %s: %w", quiz.ID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrQuizNotFound
	}
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete quiz %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}
