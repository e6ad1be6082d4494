package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/messagely/messagely-go/internal/model"
	"github.com/messagely/messagely-go/internal/repository"
)

func seed(t *testing.T) *Store {
	t.Helper()
	s := New()
	ctx := context.Background()
	for _, u := range []model.User{
		{Username: "carol", FirstName: "Carol", LastName: "C", Phone: "3"},
		{Username: "alice", FirstName: "Alice", LastName: "A", Phone: "1"},
		{Username: "bob", FirstName: "Bob", LastName: "B", Phone: "2"},
	} {
		u := u
		require.NoError(t, s.Users().Create(ctx, &u))
	}
	return s
}

func TestUsers(t *testing.T) {
	req := require.New(t)
	s := seed(t)
	ctx := context.Background()

	err := s.Users().Create(ctx, &model.User{Username: "alice"})
	req.ErrorIs(err, repository.ErrDuplicateUsername)

	list, err := s.Users().List(ctx)
	req.NoError(err)
	req.Equal([]string{"alice", "bob", "carol"}, []string{list[0].Username, list[1].Username, list[2].Username})

	_, err = s.Users().GetByUsername(ctx, "ghost")
	req.ErrorIs(err, repository.ErrUserNotFound)

	at := time.Now().UTC()
	req.NoError(s.Users().UpdateLastLogin(ctx, "alice", at))
	u, err := s.Users().GetByUsername(ctx, "alice")
	req.NoError(err)
	req.NotNil(u.LastLoginAt)
	req.True(u.LastLoginAt.Equal(at))

	req.ErrorIs(s.Users().UpdateLastLogin(ctx, "ghost", at), repository.ErrUserNotFound)

	ok, err := s.Users().Exists(ctx, "bob")
	req.NoError(err)
	req.True(ok)
}

func TestMessages(t *testing.T) {
	req := require.New(t)
	s := seed(t)
	ctx := context.Background()
	sent := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	err := s.Messages().Create(ctx, &model.Message{ID: "m0", FromUsername: "alice", ToUsername: "ghost", SentAt: sent})
	req.ErrorIs(err, repository.ErrUnknownParticipant)

	req.NoError(s.Messages().Create(ctx, &model.Message{ID: "m2", FromUsername: "alice", ToUsername: "bob", Body: "second", SentAt: sent.Add(time.Minute)}))
	req.NoError(s.Messages().Create(ctx, &model.Message{ID: "m1", FromUsername: "alice", ToUsername: "bob", Body: "first", SentAt: sent}))
	req.NoError(s.Messages().Create(ctx, &model.Message{ID: "m3", FromUsername: "bob", ToUsername: "carol", Body: "other", SentAt: sent}))

	detail, err := s.Messages().GetByID(ctx, "m1")
	req.NoError(err)
	req.Equal("alice", detail.FromUser.Username)
	req.Equal("2", detail.ToUser.Phone)
	req.Nil(detail.ReadAt)

	from, err := s.Messages().ListFrom(ctx, "alice")
	req.NoError(err)
	req.Len(from, 2)
	req.Equal("m1", from[0].ID)
	req.Equal("bob", from[0].ToUser.Username)

	to, err := s.Messages().ListTo(ctx, "carol")
	req.NoError(err)
	req.Len(to, 1)
	req.Equal("bob", to[0].FromUser.Username)

	none, err := s.Messages().ListTo(ctx, "alice")
	req.NoError(err)
	req.NotNil(none)
	req.Empty(none)

	_, err = s.Messages().GetByID(ctx, "missing")
	req.ErrorIs(err, repository.ErrMessageNotFound)
}

func TestMarkReadKeepsFirstTimestamp(t *testing.T) {
	req := require.New(t)
	s := seed(t)
	ctx := context.Background()

	req.NoError(s.Messages().Create(ctx, &model.Message{ID: "m1", FromUsername: "alice", ToUsername: "bob", SentAt: time.Now()}))

	first := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r1, err := s.Messages().MarkRead(ctx, "m1", first)
	req.NoError(err)
	req.True(r1.ReadAt.Equal(first))

	r2, err := s.Messages().MarkRead(ctx, "m1", first.Add(time.Hour))
	req.NoError(err)
	req.True(r2.ReadAt.Equal(first))

	_, err = s.Messages().MarkRead(ctx, "missing", first)
	req.True(errors.Is(err, repository.ErrMessageNotFound))
}

func TestConcurrentMarkRead(t *testing.T) {
	req := require.New(t)
	s := seed(t)
	ctx := context.Background()
	req.NoError(s.Messages().Create(ctx, &model.Message{ID: "m1", FromUsername: "alice", ToUsername: "bob", SentAt: time.Now()}))

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Messages().MarkRead(ctx, "m1", base.Add(time.Duration(i)*time.Second))
		}(i)
	}
	wg.Wait()

	detail, err := s.Messages().GetByID(ctx, "m1")
	req.NoError(err)
	req.NotNil(detail.ReadAt)

	again, err := s.Messages().MarkRead(ctx, "m1", base.Add(time.Hour))
	req.NoError(err)
	req.True(again.ReadAt.Equal(*detail.ReadAt))
}
