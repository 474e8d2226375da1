package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-chat-go/internal/service"
)

// ChatHandler 负责处理简单聊天（不分会话）的 API 请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest 定义了简单聊天 API 的请求体结构。
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Chat 处理一轮简单对话请求。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	reply, err := h.chatService.HandleChat(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		respondError(c, "Chat", err, "Failed to handle chat")
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}
