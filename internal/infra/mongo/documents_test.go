package mongo

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"quiz-api/internal/domain"
)

func TestQuizDocumentRoundTrip(t *testing.T) {
	id := bson.NewObjectID()
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	quiz := domain.Quiz{
		ID:          id.Hex(),
		Slug:        "capitals",
		Title:       "Capitals",
		Description: "Europe",
		Questions: []domain.Question{
			{Text: "France?", Type: domain.QuestionSingle, Options: []string{"Paris", "Lyon"}, CorrectAnswers: []int{0}},
		},
		CreatedAt: created,
	}

	doc := quizToDocument(quiz)
	if doc.ID != id {
		t.Fatalf("expected object id %s, got %s", id.Hex(), doc.ID.Hex())
	}
	back := quizFromDocument(doc)
	if back.ID != quiz.ID || back.Title != quiz.Title || len(back.Questions) != 1 || !back.CreatedAt.Equal(created) {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestQuizDocumentStoresEmptyQuestionArray(t *testing.T) {
	doc := quizToDocument(domain.Quiz{Title: "Empty"})
	if doc.Questions == nil {
		t.Fatalf("expected empty questions array, not null")
	}
	if !doc.ID.IsZero() {
		t.Fatalf("expected zero id for unsaved quiz")
	}
}

func TestQuestionBSONFieldNames(t *testing.T) {
	raw, err := bson.Marshal(domain.Question{Text: "q", Type: domain.QuestionBoolean, Options: []string{"True", "False"}, CorrectAnswers: []int{1}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"question", "type", "options", "correctAnswers"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("expected field %q in %v", key, m)
		}
	}
}

func TestUserDocumentKeepsPasswordHash(t *testing.T) {
	user := domain.User{ID: bson.NewObjectID().Hex(), Username: "alice", PasswordHash: "$2a$10$hash", Role: domain.RoleUser}
	back := userFromDocument(userToDocument(user))
	if back != user {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, user)
	}
}

func TestMalformedObjectID(t *testing.T) {
	if _, ok := objectID("not-hex"); ok {
		t.Fatalf("expected malformed id to be rejected")
	}
	oid := bson.NewObjectID()
	if got, ok := objectID(oid.Hex()); !ok || got != oid {
		t.Fatalf("expected %s to parse", oid.Hex())
	}
}

func TestDuplicateKeyConflict(t *testing.T) {
	cases := map[string]error{
		`E11000 duplicate key error collection: quiz.users index: username_1 dup key: { username: "a" }`: domain.ErrUsernameTaken,
		`E11000 duplicate key error collection: quiz.users index: email_1 dup key: { email: "a@b.c" }`:    domain.ErrEmailTaken,
		`E11000 duplicate key error collection: quiz.users index: other_1`:                               domain.ErrConflict,
	}
	for message, want := range cases {
		if got := duplicateKeyConflict(message); !errors.Is(got, want) {
			t.Fatalf("%q: expected %v, got %v", message, want, got)
		}
	}
}
