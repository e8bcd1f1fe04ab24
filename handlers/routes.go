package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the account and friend-request API. auth guards
// every route that acts on behalf of a user.
func (h *Handler) RegisterRoutes(r gin.IRouter, auth gin.HandlerFunc) {
	r.GET("/health", h.Health)

	r.POST("/signup/", h.Signup)
	r.POST("/login/", h.Login)
	r.POST("/token/refresh/", h.RefreshToken)

	authed := r.Group("")
	authed.Use(auth)
	{
		authed.GET("/search/", h.SearchUsers)
		authed.POST("/friend-requests/send/", h.SendFriendRequest)
		authed.PUT("/friend-requests/update/", h.UpdateFriendRequest)
		authed.PATCH("/friend-requests/update/", h.UpdateFriendRequest)
		authed.GET("/friends-list/", h.FriendsList)
		authed.GET("/pending-requests/", h.PendingRequests)
	}
}
