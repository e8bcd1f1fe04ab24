package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"friendgraph/models"
)

type MySQLFriendRequestStore struct {
	db *sql.DB
}

func NewMySQLFriendRequestStore(db *sql.DB) *MySQLFriendRequestStore {
	return &MySQLFriendRequestStore{db: db}
}

const friendRequestColumns = "id, sender_id, receiver_id, status, created_at, updated_at"

func scanFriendRequest(row rowScanner) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	if err := row.Scan(&fr.ID, &fr.SenderID, &fr.ReceiverID, &fr.Status, &fr.CreatedAt, &fr.UpdatedAt); err != nil {
		return nil, err
	}
	return &fr, nil
}

func (s *MySQLFriendRequestStore) CreateFriendRequest(ctx context.Context, fr *models.FriendRequest) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO friend_requests ("+friendRequestColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		fr.ID, fr.SenderID, fr.ReceiverID, fr.Status, fr.CreatedAt, fr.UpdatedAt,
	)
	if err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (s *MySQLFriendRequestStore) getOne(ctx context.Context, query string, args ...any) (*models.FriendRequest, error) {
	fr, err := scanFriendRequest(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get friend request: %w", err)
	}
	return fr, nil
}

func (s *MySQLFriendRequestStore) GetFriendRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	return s.getOne(ctx, "SELECT "+friendRequestColumns+" FROM friend_requests WHERE id = ?", id)
}

func (s *MySQLFriendRequestStore) GetFriendRequestBetween(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	return s.getOne(ctx,
		"SELECT "+friendRequestColumns+" FROM friend_requests WHERE sender_id = ? AND receiver_id = ?",
		senderID, receiverID,
	)
}

func (s *MySQLFriendRequestStore) AcceptedBetween(ctx context.Context, a, b string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE status = 'accepted'
			  AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
		)`, a, b, b, a).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return exists, nil
}

func (s *MySQLFriendRequestStore) CountSentSince(ctx context.Context, senderID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM friend_requests WHERE sender_id = ? AND created_at >= ?",
		senderID, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recent requests: %w", err)
	}
	return n, nil
}

func (s *MySQLFriendRequestStore) UpdateStatusFromPending(ctx context.Context, id string, status models.FriendRequestStatus, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE friend_requests SET status = ?, updated_at = ? WHERE id = ? AND status = 'pending'",
		status, at, id,
	)
	if err != nil {
		return false, fmt.Errorf("update friend request: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update friend request: %w", err)
	}
	return n > 0, nil
}

func (s *MySQLFriendRequestStore) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	return s.ids(ctx, `
		SELECT receiver_id FROM friend_requests WHERE sender_id = ? AND status = 'accepted'
		UNION
		SELECT sender_id FROM friend_requests WHERE receiver_id = ? AND status = 'accepted'`,
		userID, userID,
	)
}

func (s *MySQLFriendRequestStore) PendingSenderIDs(ctx context.Context, receiverID string) ([]string, error) {
	return s.ids(ctx,
		"SELECT sender_id FROM friend_requests WHERE receiver_id = ? AND status = 'pending'",
		receiverID,
	)
}

func (s *MySQLFriendRequestStore) ids(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *MySQLFriendRequestStore) StatusesFrom(ctx context.Context, senderIDs []string, receiverID string) (map[string]models.FriendRequestStatus, error) {
	statuses := make(map[string]models.FriendRequestStatus, len(senderIDs))
	if len(senderIDs) == 0 {
		return statuses, nil
	}
	placeholders, args := inClause(senderIDs)
	args = append(args, receiverID)
	rows, err := s.db.QueryContext(ctx,
		"SELECT sender_id, status FROM friend_requests WHERE sender_id IN ("+placeholders+") AND receiver_id = ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sender string
		var status models.FriendRequestStatus
		if err := rows.Scan(&sender, &status); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses[sender] = status
	}
	return statuses, rows.Err()
}
