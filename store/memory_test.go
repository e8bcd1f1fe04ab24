package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendgraph/models"
)

func seedUsers(t *testing.T, m *Memory, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, m.CreateUser(context.Background(), &models.User{ID: name, Email: name + "@example.com", Username: name}))
	}
}

func TestMemoryUniqueKeys(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedUsers(t, m, "alice")

	err := m.CreateUser(ctx, &models.User{ID: "x", Email: "alice@example.com", Username: "other"})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, KeyEmail, dup.Key)

	err = m.CreateUser(ctx, &models.User{ID: "y", Email: "other@example.com", Username: "alice"})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, KeyUsername, dup.Key)

	require.NoError(t, m.CreateFriendRequest(ctx, &models.FriendRequest{ID: "r1", SenderID: "alice", ReceiverID: "bob"}))
	err = m.CreateFriendRequest(ctx, &models.FriendRequest{ID: "r2", SenderID: "alice", ReceiverID: "bob"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, m.CreateFriendRequest(ctx, &models.FriendRequest{ID: "r3", SenderID: "bob", ReceiverID: "alice"}))
}

func TestMemorySearchPaginates(t *testing.T) {
	m := NewMemory()
	seedUsers(t, m, "carol", "Bob", "bobby", "alice")

	page, total, err := m.SearchUsers(context.Background(), SearchByUsername, "BO", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "Bob", page[0].Username)

	page, _, err = m.SearchUsers(context.Background(), SearchByUsername, "bo", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "bobby", page[0].Username)

	page, total, err = m.SearchUsers(context.Background(), SearchByEmail, "example", 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, page)
}

func TestMemoryFriendQueries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Now()
	reqs := []models.FriendRequest{
		{ID: "1", SenderID: "a", ReceiverID: "b", Status: models.FriendRequestAccepted, CreatedAt: now},
		{ID: "2", SenderID: "c", ReceiverID: "a", Status: models.FriendRequestAccepted, CreatedAt: now},
		{ID: "3", SenderID: "d", ReceiverID: "a", Status: models.FriendRequestPending, CreatedAt: now},
		{ID: "4", SenderID: "e", ReceiverID: "a", Status: models.FriendRequestRejected, CreatedAt: now},
	}
	for i := range reqs {
		require.NoError(t, m.CreateFriendRequest(ctx, &reqs[i]))
	}

	friends, err := m.FriendIDs(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, friends)

	pending, err := m.PendingSenderIDs(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, pending)

	ok, err := m.AcceptedBetween(ctx, "b", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	statuses, err := m.StatusesFrom(ctx, []string{"b", "c", "d"}, "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]models.FriendRequestStatus{
		"c": models.FriendRequestAccepted,
		"d": models.FriendRequestPending,
	}, statuses)

	changed, err := m.UpdateStatusFromPending(ctx, "3", models.FriendRequestAccepted, now)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = m.UpdateStatusFromPending(ctx, "3", models.FriendRequestRejected, now)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMemoryCountSentSince(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{0, 30 * time.Second, 61 * time.Second} {
		require.NoError(t, m.CreateFriendRequest(ctx, &models.FriendRequest{
			ID: string(rune('a' + i)), SenderID: "s", ReceiverID: string(rune('x' + i)), CreatedAt: base.Add(offset),
		}))
	}

	n, err := m.CountSentSince(ctx, "s", base.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_off\\`, EscapeLike(`100%_off\`))
}
