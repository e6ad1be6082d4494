//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
package service

import (
	"context"
	"time"

	"github.com/messagely/messagely-go/internal/model"
)

// UserStore persists users and their credentials. Implementations return
// repository.ErrUserNotFound and repository.ErrDuplicateUsername.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
	List(ctx context.Context) ([]model.UserSummary, error)
}

// MessageStore persists messages. Implementations return
// repository.ErrMessageNotFound and repository.ErrUnknownParticipant.
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id string) (*model.MessageDetail, error)
	MarkRead(ctx context.Context, id string, at time.Time) (*model.ReadReceipt, error)
	ListFrom(ctx context.Context, username string) ([]model.SentMessage, error)
	ListTo(ctx context.Context, username string) ([]model.ReceivedMessage, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) bool
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(username string) (string, error)
}
