package store

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendgraph/models"
)

var userColumnNames = []string{
	"id", "email", "username", "password", "first_name", "last_name", "phone_number",
	"phone_number_verified", "is_email_verified", "is_active", "is_admin", "is_staff", "is_superuser",
	"date_joined", "last_login", "created_at", "updated_at",
}

func userRow(id, email, username string) []driver.Value {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []driver.Value{id, email, username, "hash", "", "", "", false, false, true, false, false, false, now, nil, now, now}
}

func newMock(t *testing.T) (*MySQLUserStore, *MySQLFriendRequestStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewMySQLUserStore(db), NewMySQLFriendRequestStore(db), mock
}

func TestMySQLGetUserByEmail(t *testing.T) {
	users, _, mock := newMock(t)

	mock.ExpectQuery("FROM users WHERE email = ").
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userColumnNames).AddRow(userRow("u1", "alice@example.com", "alice")...))

	u, err := users.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.LastLogin)
}

func TestMySQLGetUserNotFound(t *testing.T) {
	users, _, mock := newMock(t)

	mock.ExpectQuery("FROM users WHERE id = ").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userColumnNames))

	_, err := users.GetUserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMySQLCreateUserDuplicate(t *testing.T) {
	users, _, mock := newMock(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'bob' for key 'users.uk_users_username'"})

	err := users.CreateUser(context.Background(), &models.User{ID: "u2", Email: "bob@example.com", Username: "bob"})

	require.ErrorIs(t, err, ErrDuplicate)
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, KeyUsername, dup.Key)
}

func TestMySQLSearchUsersEscapesWildcards(t *testing.T) {
	users, _, mock := newMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE LOWER\(email\) LIKE`).
		WithArgs(`%a\_b%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM users WHERE LOWER\(email\) LIKE \? ORDER BY username LIMIT \? OFFSET \?`).
		WithArgs(`%a\_b%`, 10, 0).
		WillReturnRows(sqlmock.NewRows(userColumnNames).AddRow(userRow("u1", "a_b@example.com", "ab")...))

	found, total, err := users.SearchUsers(context.Background(), SearchByEmail, "A_B", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, "a_b@example.com", found[0].Email)
}

func TestMySQLSearchUsersEmpty(t *testing.T) {
	users, _, mock := newMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE LOWER\(username\) LIKE`).
		WithArgs("%zed%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	found, total, err := users.SearchUsers(context.Background(), SearchByUsername, "zed", 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, found)
}

func TestMySQLUpdateLastLoginMissingUser(t *testing.T) {
	users, _, mock := newMock(t)

	mock.ExpectExec("UPDATE users SET last_login").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := users.UpdateLastLogin(context.Background(), "ghost", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMySQLListUsersByIDs(t *testing.T) {
	users, _, mock := newMock(t)

	mock.ExpectQuery(`WHERE id IN \(\?,\?\) ORDER BY username`).
		WithArgs("u1", "u2").
		WillReturnRows(sqlmock.NewRows(userColumnNames).
			AddRow(userRow("u1", "alice@example.com", "alice")...).
			AddRow(userRow("u2", "bob@example.com", "bob")...))

	found, err := users.ListUsersByIDs(context.Background(), []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	empty, err := users.ListUsersByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
