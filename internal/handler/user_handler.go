package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-chat-go/internal/service"
	"gemini-chat-go/pkg/log"
)

// UserHandler 负责处理用户注册和登录的 API 请求。
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CredentialsRequest 定义了注册和登录共用的请求体结构。
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup 处理用户注册请求。
func (h *UserHandler) Signup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	userID, err := h.userService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, "Signup", err, "Failed to register user")
		return
	}

	log.Infof("User registered successfully: %s", req.Username)
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "username": req.Username})
}

// Login 处理用户登录请求。
func (h *UserHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	userID, accessToken, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, "Login", err, "Failed to login")
		return
	}

	log.Infof("User logged in successfully: %s", req.Username)
	c.JSON(http.StatusOK, gin.H{
		"user_id":  userID,
		"username": req.Username,
		"token":    accessToken,
	})
}
