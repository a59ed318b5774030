package server

import (
	"context"

	"github.com/interviewace/api/internal/interview"
)

// Store is the persistence the HTTP handlers need. *store.SQLiteStore
// implements it.
type Store interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (interview.User, error)
	UserByEmail(ctx context.Context, email string) (interview.User, error)
	UserByID(ctx context.Context, id string) (interview.User, error)

	ListPosts(ctx context.Context, category interview.PostCategory) ([]interview.Post, error)
	CreatePost(ctx context.Context, p interview.Post, userID string) (interview.Post, error)
	LikePost(ctx context.Context, id string) (interview.Post, error)
	PostStats(ctx context.Context) (interview.PostStats, error)

	ListWrongAnswers(ctx context.Context, owner, category string) ([]interview.WrongAnswer, error)
	WrongAnswerCategories(ctx context.Context, owner string) ([]string, error)
	RecordWrongAnswer(ctx context.Context, owner string, w interview.WrongAnswer) (interview.WrongAnswer, error)
	IncrementRetry(ctx context.Context, owner, id string) (interview.WrongAnswer, error)
	DeleteWrongAnswer(ctx context.Context, owner, id string) error

	SaveContactMessage(ctx context.Context, m interview.ContactMessage) (string, error)
}
