package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/messagely/messagely-go/internal/apperr"
	"github.com/messagely/messagely-go/internal/mocks"
	"github.com/messagely/messagely-go/internal/model"
	"github.com/messagely/messagely-go/internal/repository"
)

const testMessageID = "7b0c5d7e-3f0a-4c53-9d4e-2d1f7a8b9c01"

func newTestMessageService(t *testing.T) (*MessageService, *mocks.MockMessageStore, *mocks.MockUserStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockMessageStore(ctrl)
	users := mocks.NewMockUserStore(ctrl)

	svc := NewMessageService(messages, users)
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return testMessageID }
	return svc, messages, users
}

func aliceToBob() *model.MessageDetail {
	return &model.MessageDetail{
		ID:       testMessageID,
		Body:     "hi",
		SentAt:   fixedNow,
		FromUser: model.Contact{Username: "alice"},
		ToUser:   model.Contact{Username: "bob"},
	}
}

func TestMessageService_Send(t *testing.T) {
	svc, messages, users := newTestMessageService(t)
	ctx := context.Background()

	users.EXPECT().Exists(ctx, "bob").Return(true, nil)
	messages.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	msg, err := svc.Send(ctx, "alice", model.SendMessageRequest{ToUsername: "bob", Body: "hi"})
	require.NoError(t, err)
	require.Equal(t, testMessageID, msg.ID)
	require.Equal(t, "alice", msg.FromUsername)
	require.Equal(t, "bob", msg.ToUsername)
	require.Equal(t, fixedNow, msg.SentAt)
	require.Nil(t, msg.ReadAt)
}

func TestMessageService_SendRejected(t *testing.T) {
	tests := []struct {
		name     string
		req      model.SendMessageRequest
		setup    func(messages *mocks.MockMessageStore, users *mocks.MockUserStore)
		wantErr  error
		wantKind error
	}{
		{
			name:     "empty body",
			req:      model.SendMessageRequest{ToUsername: "bob"},
			setup:    func(*mocks.MockMessageStore, *mocks.MockUserStore) {},
			wantKind: apperr.ErrValidation,
		},
		{
			name:     "to self",
			req:      model.SendMessageRequest{ToUsername: "alice", Body: "hi"},
			setup:    func(*mocks.MockMessageStore, *mocks.MockUserStore) {},
			wantErr:  ErrSelfMessage,
			wantKind: apperr.ErrValidation,
		},
		{
			name: "unknown recipient",
			req:  model.SendMessageRequest{ToUsername: "ghost", Body: "hi"},
			setup: func(_ *mocks.MockMessageStore, users *mocks.MockUserStore) {
				users.EXPECT().Exists(gomock.Any(), "ghost").Return(false, nil)
			},
			wantErr:  ErrRecipientNotFound,
			wantKind: apperr.ErrNotFound,
		},
		{
			name: "recipient removed before insert",
			req:  model.SendMessageRequest{ToUsername: "bob", Body: "hi"},
			setup: func(messages *mocks.MockMessageStore, users *mocks.MockUserStore) {
				users.EXPECT().Exists(gomock.Any(), "bob").Return(true, nil)
				messages.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrUnknownParticipant)
			},
			wantErr:  ErrRecipientNotFound,
			wantKind: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, messages, users := newTestMessageService(t)
			tt.setup(messages, users)

			_, err := svc.Send(context.Background(), "alice", tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			require.ErrorIs(t, err, tt.wantKind)
		})
	}
}

func TestMessageService_Get(t *testing.T) {
	tests := []struct {
		identity string
		wantErr  error
	}{
		{identity: "alice"},
		{identity: "bob"},
		{identity: "carol", wantErr: ErrMessageNotFound},
		{identity: "", wantErr: ErrMessageNotFound},
	}

	for _, tt := range tests {
		t.Run("as "+tt.identity, func(t *testing.T) {
			svc, messages, _ := newTestMessageService(t)
			messages.EXPECT().GetByID(gomock.Any(), testMessageID).Return(aliceToBob(), nil)

			msg, err := svc.Get(context.Background(), tt.identity, testMessageID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, msg)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "hi", msg.Body)
		})
	}
}

func TestMessageService_GetMissing(t *testing.T) {
	svc, messages, _ := newTestMessageService(t)
	messages.EXPECT().GetByID(gomock.Any(), "nope").Return(nil, repository.ErrMessageNotFound)

	_, err := svc.Get(context.Background(), "alice", "nope")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMessageService_MarkRead(t *testing.T) {
	svc, messages, _ := newTestMessageService(t)
	ctx := context.Background()

	messages.EXPECT().GetByID(ctx, testMessageID).Return(aliceToBob(), nil)
	messages.EXPECT().MarkRead(ctx, testMessageID, fixedNow).
		Return(&model.ReadReceipt{ID: testMessageID, ReadAt: fixedNow}, nil)

	receipt, err := svc.MarkRead(ctx, "bob", testMessageID)
	require.NoError(t, err)
	require.Equal(t, fixedNow, receipt.ReadAt)
}

func TestMessageService_MarkReadDenied(t *testing.T) {
	tests := []struct {
		identity string
		wantKind error
	}{
		{identity: "alice", wantKind: apperr.ErrUnauthorized},
		{identity: "carol", wantKind: apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.identity, func(t *testing.T) {
			svc, messages, _ := newTestMessageService(t)
			messages.EXPECT().GetByID(gomock.Any(), testMessageID).Return(aliceToBob(), nil)

			_, err := svc.MarkRead(context.Background(), tt.identity, testMessageID)
			require.ErrorIs(t, err, tt.wantKind)
		})
	}
}

func TestMessageService_Lists(t *testing.T) {
	svc, messages, _ := newTestMessageService(t)
	ctx := context.Background()

	sent := []model.SentMessage{{ID: testMessageID, ToUser: model.Contact{Username: "bob"}}}
	received := []model.ReceivedMessage{{ID: testMessageID, FromUser: model.Contact{Username: "alice"}}}
	messages.EXPECT().ListFrom(ctx, "alice").Return(sent, nil)
	messages.EXPECT().ListTo(ctx, "bob").Return(received, nil)

	gotSent, err := svc.ListFrom(ctx, "alice", "alice")
	require.NoError(t, err)
	require.Equal(t, sent, gotSent)

	gotReceived, err := svc.ListTo(ctx, "bob", "bob")
	require.NoError(t, err)
	require.Equal(t, received, gotReceived)

	_, err = svc.ListFrom(ctx, "carol", "alice")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.ListTo(ctx, "carol", "bob")
	require.ErrorIs(t, err, ErrForeignMailbox)
}
