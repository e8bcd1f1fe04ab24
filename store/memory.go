package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"friendgraph/models"
)

// Memory keeps users and friend requests in process. It enforces the same
// unique keys as the MySQL schema and is used for local runs and tests.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]models.User
	requests map[string]models.FriendRequest
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]models.User),
		requests: make(map[string]models.FriendRequest),
	}
}

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return &DuplicateError{Key: KeyEmail}
		}
		if existing.Username == u.Username {
			return &DuplicateError{Key: KeyUsername}
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) findUser(match func(models.User) bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	u, ok := m.users[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.Email == email })
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.Username == username })
}

func (m *Memory) ExistsEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (m *Memory) ExistsUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (m *Memory) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLogin = &at
	u.UpdatedAt = at
	m.users[id] = u
	return nil
}

func (m *Memory) SearchUsers(_ context.Context, field SearchField, term string, limit, offset int) ([]models.User, int, error) {
	term = strings.ToLower(term)

	m.mu.RLock()
	var matched []models.User
	for _, u := range m.users {
		value := u.Username
		if field == SearchByEmail {
			value = u.Email
		}
		if strings.Contains(strings.ToLower(value), term) {
			matched = append(matched, u)
		}
	}
	m.mu.RUnlock()

	sortByUsername(matched)
	total := len(matched)
	if offset >= total {
		return []models.User{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *Memory) ListUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	m.mu.RLock()
	users := []models.User{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok && !seen[id] {
			seen[id] = true
			users = append(users, u)
		}
	}
	m.mu.RUnlock()

	sortByUsername(users)
	return users, nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (m *Memory) CreateFriendRequest(_ context.Context, fr *models.FriendRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.requests {
		if existing.SenderID == fr.SenderID && existing.ReceiverID == fr.ReceiverID {
			return &DuplicateError{Key: KeySenderReceive}
		}
	}
	m.requests[fr.ID] = *fr
	return nil
}

func (m *Memory) GetFriendRequest(_ context.Context, id string) (*models.FriendRequest, error) {
	m.mu.RLock()
	fr, ok := m.requests[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &fr, nil
}

func (m *Memory) GetFriendRequestBetween(_ context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, fr := range m.requests {
		if fr.SenderID == senderID && fr.ReceiverID == receiverID {
			found := fr
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) AcceptedBetween(_ context.Context, a, b string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, fr := range m.requests {
		if fr.Status != models.FriendRequestAccepted {
			continue
		}
		if (fr.SenderID == a && fr.ReceiverID == b) || (fr.SenderID == b && fr.ReceiverID == a) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) CountSentSince(_ context.Context, senderID string, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, fr := range m.requests {
		if fr.SenderID == senderID && !fr.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) UpdateStatusFromPending(_ context.Context, id string, status models.FriendRequestStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fr, ok := m.requests[id]
	if !ok || fr.Status != models.FriendRequestPending {
		return false, nil
	}
	fr.Status = status
	fr.UpdatedAt = at
	m.requests[id] = fr
	return true, nil
}

func (m *Memory) FriendIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := map[string]bool{}
	ids := []string{}
	for _, fr := range m.requests {
		if fr.Status != models.FriendRequestAccepted {
			continue
		}
		var other string
		switch userID {
		case fr.SenderID:
			other = fr.ReceiverID
		case fr.ReceiverID:
			other = fr.SenderID
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	return ids, nil
}

func (m *Memory) PendingSenderIDs(_ context.Context, receiverID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := []string{}
	for _, fr := range m.requests {
		if fr.ReceiverID == receiverID && fr.Status == models.FriendRequestPending {
			ids = append(ids, fr.SenderID)
		}
	}
	return ids, nil
}

func (m *Memory) StatusesFrom(_ context.Context, senderIDs []string, receiverID string) (map[string]models.FriendRequestStatus, error) {
	wanted := make(map[string]bool, len(senderIDs))
	for _, id := range senderIDs {
		wanted[id] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make(map[string]models.FriendRequestStatus)
	for _, fr := range m.requests {
		if fr.ReceiverID == receiverID && wanted[fr.SenderID] {
			statuses[fr.SenderID] = fr.Status
		}
	}
	return statuses, nil
}

func sortByUsername(users []models.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
}
