package handlers

import (
	"github.com/gin-gonic/gin"

	"friendgraph/services"
	"friendgraph/utils"
)

type SignupRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Username  string `json:"username" binding:"required,max=200"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := utils.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.accounts.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Password2: req.Password2,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	utils.Created(c, gin.H{
		"user": gin.H{
			"email":    res.User.Email,
			"username": res.User.Username,
		},
		"message": "User created successfully",
		"token":   res.Tokens,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := utils.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	tokens, err := h.accounts.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	utils.Success(c, gin.H{"token": tokens, "message": "Login success"})
}

func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := utils.BindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	access, err := h.accounts.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, gin.H{"access": access})
}
