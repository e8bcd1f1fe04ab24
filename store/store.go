package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"friendgraph/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// DuplicateError names the unique key that rejected a write.
type DuplicateError struct {
	Key string
}

func (e *DuplicateError) Error() string {
	return "duplicate record for key " + e.Key
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// Unique key names reported in DuplicateError.
const (
	KeyEmail         = "email"
	KeyUsername      = "username"
	KeySenderReceive = "sender_receiver"
)

type SearchField string

const (
	SearchByEmail    SearchField = "email"
	SearchByUsername SearchField = "username"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	// SearchUsers does a case-insensitive substring match on one field,
	// ordered by username, returning one page and the total match count.
	SearchUsers(ctx context.Context, field SearchField, term string, limit, offset int) ([]models.User, int, error)
	ListUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	Ping(ctx context.Context) error
}

type FriendRequestStore interface {
	CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error
	GetFriendRequest(ctx context.Context, id string) (*models.FriendRequest, error)
	GetFriendRequestBetween(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error)
	// AcceptedBetween reports an accepted request in either direction.
	AcceptedBetween(ctx context.Context, a, b string) (bool, error)
	CountSentSince(ctx context.Context, senderID string, since time.Time) (int, error)
	// UpdateStatusFromPending moves a pending request to status and reports
	// whether a row changed.
	UpdateStatusFromPending(ctx context.Context, id string, status models.FriendRequestStatus, at time.Time) (bool, error)
	FriendIDs(ctx context.Context, userID string) ([]string, error)
	PendingSenderIDs(ctx context.Context, receiverID string) ([]string, error)
	// StatusesFrom returns status by sender for requests addressed to
	// receiverID from any of senderIDs.
	StatusesFrom(ctx context.Context, senderIDs []string, receiverID string) (map[string]models.FriendRequestStatus, error)
}

// EscapeLike escapes LIKE wildcards so the term matches literally.
func EscapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
