package session_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zhouzirui/idol-oracle/backend/internal/model/conversation"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStoreGetSession(t *testing.T) {
	store := session.NewStore(nil)
	ctx := context.Background()

	created, isNew, err := store.Create(ctx, "")
	require.NoError(t, err)
	assert.True(t, isNew)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, conversation.StageDivination, got.Stage)
}

func TestStoreGetSessionNotFound(t *testing.T) {
	store := session.NewStore(nil)
	_, err := store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestStoreCreateWithExistingID(t *testing.T) {
	store := session.NewStore(nil)
	ctx := context.Background()

	first, isNew, err := store.Create(ctx, "abc")
	require.NoError(t, err)
	require.True(t, isNew)
	_, err = store.AppendMessage(ctx, "abc", conversation.RoleUser, "hello")
	require.NoError(t, err)

	again, isNew, err := store.Create(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, again.Messages, 1)
	assert.Equal(t, 1, store.Len())
}

func TestStoreCreateRejectsBadID(t *testing.T) {
	store := session.NewStore(nil)
	_, _, err := store.Create(context.Background(), "has space")
	require.ErrorIs(t, err, session.ErrInvalidSessionID)
	_, _, err = store.Create(context.Background(), strings.Repeat("x", 65))
	require.ErrorIs(t, err, session.ErrInvalidSessionID)
}

func TestStoreDelete(t *testing.T) {
	store := session.NewStore(nil)
	ctx := context.Background()
	created, _, err := store.Create(ctx, "")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))
	require.ErrorIs(t, store.Delete(ctx, created.ID), session.ErrSessionNotFound)
	_, err = store.Get(ctx, created.ID)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestStoreAppendDivinationAdvancesStage(t *testing.T) {
	store := session.NewStore(nil)
	ctx := context.Background()
	created, _, err := store.Create(ctx, "")
	require.NoError(t, err)

	div, err := store.AppendDivination(ctx, created.ID, "career", "我的事业怎么样？", "【乾卦】")
	require.NoError(t, err)
	assert.Equal(t, "career", div.Kind)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, conversation.StageTransition, got.Stage)
	assert.Equal(t, conversation.StepAskMore, got.TransitionStep)
}

func TestStoreSnapshotsAreDetached(t *testing.T) {
	store := session.NewStore(nil)
	ctx := context.Background()
	created, _, err := store.Create(ctx, "")
	require.NoError(t, err)

	snap, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	snap.AddMessage(conversation.RoleUser, "local only")

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Messages)
}

func TestStoreConcurrentAppendsKeepAllMessages(t *testing.T) {
	store := session.NewStore(nil)
	ctx := context.Background()
	a, _, _ := store.Create(ctx, "")
	b, _, _ := store.Create(ctx, "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = store.AppendMessage(ctx, a.ID, conversation.RoleUser, fmt.Sprintf("a-%d", i))
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = store.AppendMessage(ctx, b.ID, conversation.RoleUser, fmt.Sprintf("b-%d", i))
		}(i)
	}
	wg.Wait()

	gotA, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := store.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, gotA.Messages, 50)
	assert.Len(t, gotB.Messages, 50)
	for _, msg := range gotA.Messages {
		assert.True(t, strings.HasPrefix(msg.Content, "a-"))
	}
}

func TestStorePagination(t *testing.T) {
	store := session.NewStore(nil)
	ctx := context.Background()
	created, _, _ := store.Create(ctx, "")
	for i := 0; i < 5; i++ {
		_, err := store.AppendMessage(ctx, created.ID, conversation.RoleUser, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	msgs, err := store.Messages(ctx, created.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].Content)
	assert.Equal(t, "m2", msgs[1].Content)

	msgs, err = store.Messages(ctx, created.ID, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
