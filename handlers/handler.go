package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"friendgraph/middleware"
	"friendgraph/models"
	"friendgraph/services"
	"friendgraph/utils"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	accounts *services.AccountService
	friends  *services.FriendService
	store    Pinger
	logger   *slog.Logger
}

func New(accounts *services.AccountService, friends *services.FriendService, store Pinger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{accounts: accounts, friends: friends, store: store, logger: logger}
}

func (h *Handler) fail(c *gin.Context, err error) {
	utils.RespondError(c, h.logger, err)
}

// currentUser returns the authenticated user or writes a 401.
func (h *Handler) currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.Unauthorized(c, "authentication required")
		return nil, false
	}
	return user, true
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
