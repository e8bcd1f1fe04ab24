package models

// Realtime events delivered to connected users.
const (
	EventFriendRequestReceived = "friend_request_received"
	EventFriendRequestUpdated  = "friend_request_updated"
)
