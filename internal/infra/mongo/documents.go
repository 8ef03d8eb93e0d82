package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"quiz-api/internal/domain"
)

type quizDocument struct {
	ID          bson.ObjectID     `bson:"_id,omitempty"`
	Slug        string            `bson:"slug"`
	Title       string            `bson:"title"`
	Description string            `bson:"description"`
	Questions   []domain.Question `bson:"questions"`
	CreatedAt   time.Time         `bson:"createdAt"`
}

type scoreDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	UserID      bson.ObjectID `bson:"userId"`
	QuizID      bson.ObjectID `bson:"quizId"`
	Score       int           `bson:"score"`
	MaxScore    int           `bson:"maxScore"`
	CompletedAt time.Time     `bson:"completedAt"`
}

type userDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Username  string        `bson:"username"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	Role      string        `bson:"role"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func ascending(field string) bson.D {
	return bson.D{{Key: field, Value: 1}}
}

func quizFromDocument(d quizDocument) domain.Quiz {
	return domain.Quiz{
		ID:          d.ID.Hex(),
		Slug:        d.Slug,
		Title:       d.Title,
		Description: d.Description,
		Questions:   d.Questions,
		CreatedAt:   d.CreatedAt,
	}
}

func quizToDocument(q domain.Quiz) quizDocument {
	d := quizDocument{
		Slug:        q.Slug,
		Title:       q.Title,
		Description: q.Description,
		Questions:   q.Questions,
		CreatedAt:   q.CreatedAt,
	}
	if d.Questions == nil {
		d.Questions = []domain.Question{}
	}
	if id, err := bson.ObjectIDFromHex(q.ID); err == nil {
		d.ID = id
	}
	return d
}

func scoreFromDocument(d scoreDocument) domain.Score {
	return domain.Score{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		QuizID:      d.QuizID.Hex(),
		Score:       d.Score,
		MaxScore:    d.MaxScore,
		CompletedAt: d.CompletedAt,
	}
}

func userFromDocument(d userDocument) domain.User {
	return domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
	}
}

func userToDocument(u domain.User) userDocument {
	d := userDocument{
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	if id, err := bson.ObjectIDFromHex(u.ID); err == nil {
		d.ID = id
	}
	return d
}

// objectID parses a hex id. Malformed ids can never match a stored document,
// so callers treat ok == false as not found.
func objectID(id string) (bson.ObjectID, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	return oid, err == nil
}
