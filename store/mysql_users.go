package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"friendgraph/models"
)

const mysqlDuplicateEntry = 1062

const userColumns = `id, email, username, password, first_name, last_name, phone_number,
	phone_number_verified, is_email_verified, is_active, is_admin, is_staff, is_superuser,
	date_joined, last_login, created_at, updated_at`

type MySQLUserStore struct {
	db *sql.DB
}

func NewMySQLUserStore(db *sql.DB) *MySQLUserStore {
	return &MySQLUserStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var lastLogin sql.NullTime
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.Password, &u.FirstName, &u.LastName, &u.PhoneNumber,
		&u.PhoneVerified, &u.EmailVerified, &u.IsActive, &u.IsAdmin, &u.IsStaff, &u.IsSuperuser,
		&u.DateJoined, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

func (s *MySQLUserStore) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.Password, u.FirstName, u.LastName, u.PhoneNumber,
		u.PhoneVerified, u.EmailVerified, u.IsActive, u.IsAdmin, u.IsStaff, u.IsSuperuser,
		u.DateJoined, u.LastLogin, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (s *MySQLUserStore) getUserBy(ctx context.Context, column, value string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return u, nil
}

func (s *MySQLUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUserBy(ctx, "id", id)
}

func (s *MySQLUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserBy(ctx, "email", email)
}

func (s *MySQLUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUserBy(ctx, "username", username)
}

func (s *MySQLUserStore) exists(ctx context.Context, column, value string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE "+column+" = ?)", value).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", column, err)
	}
	return exists, nil
}

func (s *MySQLUserStore) ExistsEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "email", email)
}

func (s *MySQLUserStore) ExistsUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username", username)
}

func (s *MySQLUserStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, "UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?", at, at, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLUserStore) SearchUsers(ctx context.Context, field SearchField, term string, limit, offset int) ([]models.User, int, error) {
	var column string
	switch field {
	case SearchByEmail:
		column = "email"
	case SearchByUsername:
		column = "username"
	default:
		return nil, 0, fmt.Errorf("unsupported search field %q", field)
	}

	pattern := "%" + EscapeLike(strings.ToLower(term)) + "%"
	where := " FROM users WHERE LOWER(" + column + ") LIKE ?"

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+where, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	if total == 0 {
		return []models.User{}, 0, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+where+" ORDER BY username LIMIT ? OFFSET ?",
		pattern, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *MySQLUserStore) ListUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	placeholders, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id IN ("+placeholders+") ORDER BY username",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (s *MySQLUserStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func scanUsers(rows *sql.Rows) ([]models.User, error) {
	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func inClause(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

// translateWriteError turns a MySQL duplicate-key error into a
// DuplicateError naming the violated key.
func translateWriteError(err error) error {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) || myErr.Number != mysqlDuplicateEntry {
		return err
	}
	msg := myErr.Message
	switch {
	case strings.Contains(msg, "uk_users_email"):
		return &DuplicateError{Key: KeyEmail}
	case strings.Contains(msg, "uk_users_username"):
		return &DuplicateError{Key: KeyUsername}
	case strings.Contains(msg, "uk_friend_requests_pair"):
		return &DuplicateError{Key: KeySenderReceive}
	}
	return &DuplicateError{Key: "unknown"}
}
