package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"quiz-api/internal/domain"
)

// UserStore implements app.UserRepository on the users collection. Uniqueness
// is enforced by the indexes created in EnsureIndexes.
type UserStore struct {
	collection *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{collection: db.Collection(usersCollection)}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	doc := userToDocument(*user)
	doc.ID = bson.NewObjectID()
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return translateWriteError(err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(ascending("createdAt")))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	users := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, userFromDocument(d))
	}
	return users, nil
}

func (s *UserStore) Update(ctx context.Context, user domain.User) error {
	oid, ok := objectID(user.ID)
	if !ok {
		return domain.ErrUserNotFound
	}
	update := bson.M{"$set": bson.M{
		"username": user.Username,
		"email":    user.Email,
		"password": user.PasswordHash,
		"role":     user.Role,
	}}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return translateWriteError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var doc userDocument
	err := s.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return userFromDocument(doc), nil
}

// translateWriteError maps duplicate-key failures on the unique indexes to
// the account conflict the caller can report.
func translateWriteError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to write user: %w", err)
	}
	return duplicateKeyConflict(err.Error())
}

func duplicateKeyConflict(message string) error {
	switch {
	case strings.Contains(message, "username"):
		return domain.ErrUsernameTaken
	case strings.Contains(message, "email"):
		return domain.ErrEmailTaken
	default:
		return domain.ErrConflict
	}
}
