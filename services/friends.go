package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"friendgraph/apperrors"
	"friendgraph/metrics"
	"friendgraph/models"
	"friendgraph/store"
	"friendgraph/utils"
)

// Notifier delivers a realtime event to every connection of a user.
type Notifier interface {
	Notify(userID, event string, data interface{})
}

const (
	msgReceiverMissing = "User with this email does not exist."
	msgSelfRequest     = "You cannot send a friend request to yourself."
	msgAlreadySent     = "Friend request already sent."
	msgAlreadyFriends  = "You are already friends with this user."
	msgRequestMissing  = "Friend request not found."
	msgNotPending      = "This friend request is no longer pending"
)

type FriendService struct {
	users    store.UserStore
	requests store.FriendRequestStore
	notifier Notifier
	logger   *slog.Logger
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewFriendService(users store.UserStore, requests store.FriendRequestStore, notifier Notifier, logger *slog.Logger, limit int, window time.Duration) *FriendService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FriendService{
		users:    users,
		requests: requests,
		notifier: notifier,
		logger:   logger,
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (s *FriendService) notify(userID, event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(userID, event, data)
	}
}

func (s *FriendService) rejectSend(err error) error {
	metrics.FriendRequestsTotal.WithLabelValues("send", "rejected").Inc()
	return err
}

// SendRequest creates a pending request from sender to the user owning
// receiverEmail after checking, in order: the receiver exists, is not the
// sender, has no request from the sender yet, is not already a friend, and
// the sender is under the rate limit.
func (s *FriendService) SendRequest(ctx context.Context, sender *models.User, receiverEmail string) (*models.FriendRequest, error) {
	receiver, err := s.users.GetUserByEmail(ctx, utils.NormalizeEmail(receiverEmail))
	if errors.Is(err, store.ErrNotFound) {
		return nil, s.rejectSend(apperrors.Field("receiver_email", msgReceiverMissing))
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("load receiver: %w", err))
	}

	if receiver.ID == sender.ID || utils.NormalizeEmail(receiverEmail) == sender.Email {
		return nil, s.rejectSend(apperrors.Validation(msgSelfRequest))
	}

	_, err = s.requests.GetFriendRequestBetween(ctx, sender.ID, receiver.ID)
	if err == nil {
		return nil, s.rejectSend(apperrors.Validation(msgAlreadySent))
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Internal(fmt.Errorf("load existing request: %w", err))
	}

	friends, err := s.requests.AcceptedBetween(ctx, sender.ID, receiver.ID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("check friendship: %w", err))
	}
	if friends {
		return nil, s.rejectSend(apperrors.Validation(msgAlreadyFriends))
	}

	now := s.now().UTC()
	sent, err := s.requests.CountSentSince(ctx, sender.ID, now.Add(-s.window))
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("count recent requests: %w", err))
	}
	if sent >= s.limit {
		metrics.FriendRequestsTotal.WithLabelValues("send", "rate_limited").Inc()
		s.logger.Info("friend request rate limited", slog.String("sender_id", sender.ID), slog.Int("sent", sent))
		return nil, apperrors.Validation(s.rateLimitMessage())
	}

	req := &models.FriendRequest{
		ID:         utils.GenerateUUID(),
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Status:     models.FriendRequestPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.requests.CreateFriendRequest(ctx, req); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, s.rejectSend(apperrors.Validation(msgAlreadySent))
		}
		return nil, apperrors.Internal(fmt.Errorf("create friend request: %w", err))
	}

	metrics.FriendRequestsTotal.WithLabelValues("send", "created").Inc()
	s.logger.Info("friend request sent",
		slog.String("request_id", req.ID),
		slog.String("sender_id", sender.ID),
		slog.String("receiver_id", receiver.ID),
	)
	s.notify(receiver.ID, models.EventFriendRequestReceived, map[string]interface{}{
		"id":     req.ID,
		"sender": sender.ToSummary(),
	})
	return req, nil
}

func (s *FriendService) rateLimitMessage() string {
	per := "per " + s.window.String()
	if s.window == time.Minute {
		per = "per minute"
	}
	return fmt.Sprintf("You have exceeded the limit of %d friend requests %s.", s.limit, per)
}

// Respond accepts or rejects a pending request addressed to receiver.
// requestID names any request from the sender; the request actually
// updated is the one from that sender to receiver.
func (s *FriendService) Respond(ctx context.Context, receiver *models.User, requestID string, status models.FriendRequestStatus) (*models.FriendRequest, error) {
	if requestID == "" {
		return nil, apperrors.Validation("Sender ID is required.")
	}

	ref, err := s.requests.GetFriendRequest(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound(msgRequestMissing)
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("load friend request: %w", err))
	}

	req, err := s.requests.GetFriendRequestBetween(ctx, ref.SenderID, receiver.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound(msgRequestMissing)
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("load friend request: %w", err))
	}

	if !status.IsResponse() {
		return nil, apperrors.Validation("Invalid status")
	}
	if req.Status != models.FriendRequestPending {
		metrics.FriendRequestsTotal.WithLabelValues(string(status), "not_pending").Inc()
		return nil, apperrors.Validation(msgNotPending)
	}

	now := s.now().UTC()
	changed, err := s.requests.UpdateStatusFromPending(ctx, req.ID, status, now)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("update friend request: %w", err))
	}
	if !changed {
		metrics.FriendRequestsTotal.WithLabelValues(string(status), "not_pending").Inc()
		return nil, apperrors.Validation(msgNotPending)
	}
	req.Status = status
	req.UpdatedAt = now

	metrics.FriendRequestsTotal.WithLabelValues(string(status), "updated").Inc()
	s.logger.Info("friend request updated",
		slog.String("request_id", req.ID),
		slog.String("status", string(status)),
		slog.String("receiver_id", receiver.ID),
	)
	s.notify(req.SenderID, models.EventFriendRequestUpdated, map[string]interface{}{
		"id":       req.ID,
		"status":   status,
		"receiver": receiver.ToSummary(),
	})
	return req, nil
}

// ListFriends returns everyone joined to viewer by an accepted request in
// either direction, ordered by username.
func (s *FriendService) ListFriends(ctx context.Context, viewer *models.User) ([]models.UserWithStatus, error) {
	ids, err := s.requests.FriendIDs(ctx, viewer.ID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list friend ids: %w", err))
	}
	return s.annotated(ctx, viewer, ids)
}

// ListPending returns the senders of pending requests addressed to viewer.
func (s *FriendService) ListPending(ctx context.Context, viewer *models.User) ([]models.UserWithStatus, error) {
	ids, err := s.requests.PendingSenderIDs(ctx, viewer.ID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list pending senders: %w", err))
	}
	return s.annotated(ctx, viewer, ids)
}

// annotated loads ids and attaches the status of the request each listed
// user sent to viewer, or nil.
func (s *FriendService) annotated(ctx context.Context, viewer *models.User, ids []string) ([]models.UserWithStatus, error) {
	out := []models.UserWithStatus{}
	if len(ids) == 0 {
		return out, nil
	}

	users, err := s.users.ListUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("load users: %w", err))
	}
	statuses, err := s.requests.StatusesFrom(ctx, ids, viewer.ID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("load statuses: %w", err))
	}

	for i := range users {
		item := models.UserWithStatus{UserSummary: users[i].ToSummary()}
		if st, ok := statuses[users[i].ID]; ok {
			st := st
			item.Status = &st
		}
		out = append(out, item)
	}
	return out, nil
}
