package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/messagely/messagely-go/internal/access"
	"github.com/messagely/messagely-go/internal/apperr"
	"github.com/messagely/messagely-go/internal/model"
	"github.com/messagely/messagely-go/internal/repository"
)

var (
	ErrMessageNotFound   = apperr.New(apperr.ErrNotFound, "message not found")
	ErrRecipientNotFound = apperr.New(apperr.ErrNotFound, "recipient not found")
	ErrSelfMessage       = apperr.New(apperr.ErrValidation, "cannot send a message to yourself")
	ErrNotRecipient      = apperr.New(apperr.ErrUnauthorized, "only the recipient can mark a message read")
	ErrForeignMailbox    = apperr.New(apperr.ErrUnauthorized, "cannot list another user's messages")
)

// MessageService combines the message store with the access checks. Every
// method takes the authenticated identity of the caller.
type MessageService struct {
	messages MessageStore
	users    UserStore
	now      func() time.Time
	newID    func() string
}

// NewMessageService creates a new MessageService.
func NewMessageService(messages MessageStore, users UserStore) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
}

// Send stores a new unread message from identity to req.ToUsername.
func (s *MessageService) Send(ctx context.Context, identity string, req model.SendMessageRequest) (*model.Message, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.ToUsername == identity {
		return nil, ErrSelfMessage
	}

	exists, err := s.users.Exists(ctx, req.ToUsername)
	if err != nil {
		return nil, fmt.Errorf("check recipient: %w", err)
	}
	if !exists {
		return nil, ErrRecipientNotFound
	}

	msg := &model.Message{
		ID:           s.newID(),
		FromUsername: identity,
		ToUsername:   req.ToUsername,
		Body:         req.Body,
		SentAt:       s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrUnknownParticipant) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("create message: %w", err)
	}

	return msg, nil
}

// Get returns the message if identity is its sender or recipient. Anyone
// else sees ErrMessageNotFound so the id's existence is not revealed.
func (s *MessageService) Get(ctx context.Context, identity, id string) (*model.MessageDetail, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("get message: %w", err)
	}

	if !access.CanView(identity, msg) {
		slog.WarnContext(ctx, "message access denied", "username", identity, "message_id", id)
		return nil, ErrMessageNotFound
	}
	return msg, nil
}

// MarkRead stamps read_at on behalf of the recipient. The first stamp wins.
func (s *MessageService) MarkRead(ctx context.Context, identity, id string) (*model.ReadReceipt, error) {
	msg, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if !access.CanMarkRead(identity, msg) {
		slog.WarnContext(ctx, "mark read denied", "username", identity, "message_id", id)
		return nil, ErrNotRecipient
	}

	receipt, err := s.messages.MarkRead(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return receipt, nil
}

// ListFrom returns the messages username sent. Only username may ask.
func (s *MessageService) ListFrom(ctx context.Context, identity, username string) ([]model.SentMessage, error) {
	if identity != username {
		return nil, ErrForeignMailbox
	}
	msgs, err := s.messages.ListFrom(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list sent messages: %w", err)
	}
	return msgs, nil
}

// ListTo returns the messages username received. Only username may ask.
func (s *MessageService) ListTo(ctx context.Context, identity, username string) ([]model.ReceivedMessage, error) {
	if identity != username {
		return nil, ErrForeignMailbox
	}
	msgs, err := s.messages.ListTo(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list received messages: %w", err)
	}
	return msgs, nil
}
