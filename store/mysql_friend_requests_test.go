package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendgraph/models"
)

func TestMySQLCreateFriendRequestDuplicatePair(t *testing.T) {
	_, requests, mock := newMock(t)

	mock.ExpectExec("INSERT INTO friend_requests").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a-b' for key 'friend_requests.uk_friend_requests_pair'"})

	err := requests.CreateFriendRequest(context.Background(), &models.FriendRequest{ID: "r1", SenderID: "a", ReceiverID: "b", Status: models.FriendRequestPending})

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, KeySenderReceive, dup.Key)
}

func TestMySQLCreateFriendRequestOtherError(t *testing.T) {
	_, requests, mock := newMock(t)

	cause := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO friend_requests").WillReturnError(cause)

	err := requests.CreateFriendRequest(context.Background(), &models.FriendRequest{ID: "r1"})
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrDuplicate)
}

func TestMySQLAcceptedBetweenChecksBothDirections(t *testing.T) {
	_, requests, mock := newMock(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("a", "b", "b", "a").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := requests.AcceptedBetween(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMySQLCountSentSince(t *testing.T) {
	_, requests, mock := newMock(t)

	since := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("a", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := requests.CountSentSince(context.Background(), "a", since)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMySQLUpdateStatusFromPending(t *testing.T) {
	_, requests, mock := newMock(t)

	mock.ExpectExec("UPDATE friend_requests SET status = \\?, updated_at = \\? WHERE id = \\? AND status = 'pending'").
		WithArgs(models.FriendRequestAccepted, sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE friend_requests").
		WithArgs(models.FriendRequestAccepted, sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := requests.UpdateStatusFromPending(context.Background(), "r1", models.FriendRequestAccepted, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = requests.UpdateStatusFromPending(context.Background(), "r1", models.FriendRequestAccepted, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMySQLFriendIDs(t *testing.T) {
	_, requests, mock := newMock(t)

	mock.ExpectQuery("UNION").
		WithArgs("a", "a").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b").AddRow("c"))

	ids, err := requests.FriendIDs(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids)
}

func TestMySQLStatusesFrom(t *testing.T) {
	_, requests, mock := newMock(t)

	mock.ExpectQuery(`WHERE sender_id IN \(\?,\?\) AND receiver_id = \?`).
		WithArgs("b", "c", "a").
		WillReturnRows(sqlmock.NewRows([]string{"sender_id", "status"}).AddRow("b", "accepted"))

	statuses, err := requests.StatusesFrom(context.Background(), []string{"b", "c"}, "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]models.FriendRequestStatus{"b": models.FriendRequestAccepted}, statuses)
}

func TestMySQLGetFriendRequestNotFound(t *testing.T) {
	_, requests, mock := newMock(t)

	mock.ExpectQuery("FROM friend_requests WHERE sender_id = \\? AND receiver_id = \\?").
		WithArgs("a", "b").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sender_id", "receiver_id", "status", "created_at", "updated_at"}))

	_, err := requests.GetFriendRequestBetween(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrNotFound)
}
