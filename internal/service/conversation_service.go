package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"gemini-chat-go/internal/apperr"
	"gemini-chat-go/internal/model"
	"gemini-chat-go/internal/repository"
	"gemini-chat-go/pkg/llm"
	"gemini-chat-go/pkg/log"
)

// defaultChatTitle 是创建会话时未提供标题的缺省值。
const defaultChatTitle = "New Chat"

// ConversationService 接口定义了分会话聊天流程的业务操作。
type ConversationService interface {
	CreateChat(ctx context.Context, userID, title string) (chatID string, err error)
	SendMessage(ctx context.Context, userID, chatID, message string) (reply string, err error)
	ListChats(ctx context.Context, userID string) ([]model.ChatSummary, error)
	GetHistory(ctx context.Context, userID, chatID string) ([]model.Message, error)
	DeleteChat(ctx context.Context, userID, chatID string) error
	RenameChat(ctx context.Context, userID, chatID, newTitle string) error
}

type conversationService struct {
	chatRepo  repository.ChatRepository
	llmClient llm.Client
}

// NewConversationService 创建一个新的 ConversationService 实例。
func NewConversationService(chatRepo repository.ChatRepository, llmClient llm.Client) ConversationService {
	return &conversationService{
		chatRepo:  chatRepo,
		llmClient: llmClient,
	}
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// CreateChat 为用户创建一个新会话。用户还没有会话文档时先创建文档，
// 否则把新会话追加到既有文档中。
func (s *conversationService) CreateChat(ctx context.Context, userID, title string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", apperr.Validation("User ID is required")
	}
	if strings.TrimSpace(title) == "" {
		title = defaultChatTitle
	}

	chat := model.Chat{
		ChatID:    uuid.NewString(),
		CreatedAt: nowISO(),
		Title:     title,
		History:   []model.Message{},
	}

	_, err := s.chatRepo.FindOwner(ctx, userID)
	switch {
	case err == nil:
		if err := s.chatRepo.PushChat(ctx, userID, chat); err != nil {
			return "", err
		}
	case errors.Is(err, mongo.ErrNoDocuments):
		owner := &model.ChatOwner{UserID: userID, Chats: []model.Chat{chat}}
		if err := s.chatRepo.InsertOwner(ctx, owner); err != nil {
			return "", err
		}
	default:
		return "", err
	}

	log.Infof("New chat created for user %s", userID)
	return chat.ChatID, nil
}

// SendMessage 在指定会话中发送一条消息：用全部既往历史拼接 prompt，
// 调用模型后把用户消息和模型回复作为一对原子地追加到 history 中。
// 读取-拼接-写入不构成端到端事务，并发写入按最终写入到达顺序排列。
func (s *conversationService) SendMessage(ctx context.Context, userID, chatID, message string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", apperr.Validation("User ID is required")
	}
	if strings.TrimSpace(chatID) == "" {
		return "", apperr.Validation("Chat ID is required")
	}
	if strings.TrimSpace(message) == "" {
		return "", apperr.Validation("Message cannot be empty")
	}

	chat, err := s.findChat(ctx, userID, chatID)
	if err != nil {
		return "", err
	}

	prompt := buildConversationPrompt(chat.History, message)

	reply, err := s.llmClient.GenerateResponse(ctx, prompt)
	if err != nil {
		log.Error("SendMessage: model call failed", err)
		return "", apperr.Unavailable("AI service unavailable")
	}

	pair := []model.Message{
		{Sender: "user", Message: message, Timestamp: nowISO()},
		{Sender: "bot", Message: reply, Timestamp: nowISO()},
	}
	matched, err := s.chatRepo.AppendMessages(ctx, userID, chatID, pair)
	if err != nil {
		return "", err
	}
	if matched == 0 {
		// 会话在模型调用期间被并发删除
		return "", apperr.NotFound("Chat not found")
	}

	log.Infof("Message sent successfully for user %s, chat %s", userID, chatID)
	return reply, nil
}

// ListChats 返回用户所有会话的摘要，保持存储顺序。
// 用户没有会话文档时返回空列表而不是错误。
func (s *conversationService) ListChats(ctx context.Context, userID string) ([]model.ChatSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("User ID is required")
	}

	owner, err := s.chatRepo.FindOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []model.ChatSummary{}, nil
		}
		return nil, err
	}

	summaries := make([]model.ChatSummary, 0, len(owner.Chats))
	for _, c := range owner.Chats {
		summaries = append(summaries, model.ChatSummary{
			ChatID:    c.ChatID,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
		})
	}

	log.Infof("Retrieved %d chats for user %s", len(summaries), userID)
	return summaries, nil
}

// GetHistory 返回指定会话的全部消息，保持插入顺序。
func (s *conversationService) GetHistory(ctx context.Context, userID, chatID string) ([]model.Message, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("User ID is required")
	}
	if strings.TrimSpace(chatID) == "" {
		return nil, apperr.Validation("Chat ID is required")
	}

	chat, err := s.findChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	history := chat.History
	if history == nil {
		history = []model.Message{}
	}

	log.Infof("Retrieved %d messages for chat %s", len(history), chatID)
	return history, nil
}

// DeleteChat 按 chat_id 删除会话，目标不存在时返回 NotFound。
func (s *conversationService) DeleteChat(ctx context.Context, userID, chatID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.Validation("User ID is required")
	}
	if strings.TrimSpace(chatID) == "" {
		return apperr.Validation("Chat ID is required")
	}

	modified, err := s.chatRepo.RemoveChat(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if modified == 0 {
		return apperr.NotFound("Chat not found or already deleted")
	}

	log.Infof("Chat %s deleted successfully for user %s", chatID, userID)
	return nil
}

// RenameChat 更新会话标题，没有文档被修改时返回 NotFound。
func (s *conversationService) RenameChat(ctx context.Context, userID, chatID, newTitle string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.Validation("User ID is required")
	}
	if strings.TrimSpace(chatID) == "" {
		return apperr.Validation("Chat ID is required")
	}
	if strings.TrimSpace(newTitle) == "" {
		return apperr.Validation("New title is required")
	}

	modified, err := s.chatRepo.RenameChat(ctx, userID, chatID, newTitle)
	if err != nil {
		return err
	}
	if modified == 0 {
		return apperr.NotFound("Chat not found or title unchanged")
	}

	log.Infof("Chat %s renamed to '%s' for user %s", chatID, newTitle, userID)
	return nil
}

// findChat 定位用户文档中的指定会话，用户或会话不存在时返回 NotFound。
func (s *conversationService) findChat(ctx context.Context, userID, chatID string) (*model.Chat, error) {
	owner, err := s.chatRepo.FindOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}

	for i := range owner.Chats {
		if owner.Chats[i].ChatID == chatID {
			return &owner.Chats[i], nil
		}
	}
	return nil, apperr.NotFound("Chat not found")
}

// buildConversationPrompt 把既往历史逐条拼成 "Sender: text" 行，
// 末尾追加当前消息和 "Bot:" 引导模型续写。
func buildConversationPrompt(history []model.Message, message string) string {
	var b strings.Builder
	for _, m := range history {
		b.WriteString(fmt.Sprintf("%s: %s\n", capitalize(m.Sender), m.Message))
	}
	b.WriteString(fmt.Sprintf("User: %s\nBot:", message))
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
