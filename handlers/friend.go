package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"friendgraph/models"
	"friendgraph/utils"
)

type SendFriendRequestRequest struct {
	ReceiverEmail string `json:"receiver_email" binding:"required,email"`
}

type UpdateFriendRequestRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SendFriendRequest(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req SendFriendRequestRequest
	if err := utils.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	fr, err := h.friends.SendRequest(c.Request.Context(), user, req.ReceiverEmail)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Created(c, gin.H{"id": fr.ID, "status": fr.Status})
}

// UpdateFriendRequest accepts or rejects the request named by ?id=.
func (h *Handler) UpdateFriendRequest(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	// An empty body leaves status blank and is reported as an invalid status.
	var req UpdateFriendRequestRequest
	if err := utils.BindJSON(c, &req); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, err)
		return
	}

	fr, err := h.friends.Respond(c.Request.Context(), user, c.Query("id"), models.FriendRequestStatus(req.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, gin.H{"message": "Friend request " + string(fr.Status)})
}

func (h *Handler) FriendsList(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	friends, err := h.friends.ListFriends(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, friends)
}

func (h *Handler) PendingRequests(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	pending, err := h.friends.ListPending(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, pending)
}
