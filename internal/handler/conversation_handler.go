package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-chat-go/internal/service"
)

// ConversationHandler 负责处理分会话聊天的所有 API 请求。
type ConversationHandler struct {
	convService service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler 实例。
func NewConversationHandler(convService service.ConversationService) *ConversationHandler {
	return &ConversationHandler{convService: convService}
}

// NewChatRequest 定义了创建会话 API 的请求体结构，title 可选。
type NewChatRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}

// CreateChat 处理创建新会话的请求。
func (h *ConversationHandler) CreateChat(c *gin.Context) {
	var req NewChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	chatID, err := h.convService.CreateChat(c.Request.Context(), req.UserID, req.Title)
	if err != nil {
		respondError(c, "CreateChat", err, "Failed to create chat")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "New chat created", "chat_id": chatID})
}

// SendMessageRequest 定义了发送消息 API 的请求体结构。
type SendMessageRequest struct {
	UserID  string `json:"user_id"`
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

// SendMessage 处理在指定会话中发送消息的请求。
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	reply, err := h.convService.SendMessage(c.Request.Context(), req.UserID, req.ChatID, req.Message)
	if err != nil {
		respondError(c, "SendMessage", err, "Failed to send message")
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// GetChats 返回用户所有会话的摘要列表。
func (h *ConversationHandler) GetChats(c *gin.Context) {
	userID := c.Param("user_id")

	summaries, err := h.convService.ListChats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "GetChats", err, "Failed to retrieve chats")
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// GetChatHistory 返回指定会话的全部消息。
func (h *ConversationHandler) GetChatHistory(c *gin.Context) {
	userID := c.Param("user_id")
	chatID := c.Param("chat_id")

	history, err := h.convService.GetHistory(c.Request.Context(), userID, chatID)
	if err != nil {
		respondError(c, "GetChatHistory", err, "Failed to retrieve chat history")
		return
	}

	c.JSON(http.StatusOK, history)
}

// DeleteChat 删除指定会话。
func (h *ConversationHandler) DeleteChat(c *gin.Context) {
	userID := c.Param("user_id")
	chatID := c.Param("chat_id")

	if err := h.convService.DeleteChat(c.Request.Context(), userID, chatID); err != nil {
		respondError(c, "DeleteChat", err, "Failed to delete chat")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Chat deleted successfully"})
}

// RenameRequest 定义了重命名会话 API 的请求体结构。
type RenameRequest struct {
	NewTitle string `json:"new_title"`
}

// RenameChat 重命名指定会话。
func (h *ConversationHandler) RenameChat(c *gin.Context) {
	userID := c.Param("user_id")
	chatID := c.Param("chat_id")

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if err := h.convService.RenameChat(c.Request.Context(), userID, chatID, req.NewTitle); err != nil {
		respondError(c, "RenameChat", err, "Failed to rename chat")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Chat title updated"})
}
