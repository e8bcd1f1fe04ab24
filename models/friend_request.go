package models

import "time"

type FriendRequestStatus string

const (
	FriendRequestSent     FriendRequestStatus = "sent"
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// IsResponse reports whether a receiver may move a pending request to s.
func (s FriendRequestStatus) IsResponse() bool {
	return s == FriendRequestAccepted || s == FriendRequestRejected
}

type FriendRequest struct {
	ID         string              `json:"id"`
	SenderID   string              `json:"sender_id"`
	ReceiverID string              `json:"receiver_id"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}
