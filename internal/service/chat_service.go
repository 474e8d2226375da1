package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"gemini-chat-go/internal/apperr"
	"gemini-chat-go/internal/model"
	"gemini-chat-go/internal/repository"
	"gemini-chat-go/pkg/llm"
	"gemini-chat-go/pkg/log"
)

const (
	// maxMessageLen 是单条用户消息允许的最大字符数（按 rune 计），超出直接拒绝而不是截断。
	maxMessageLen = 2000
	// historyWindow 是拼接 prompt 时回看的最近对话轮数。
	historyWindow = 10
)

// ChatService 定义了简单聊天流程（不分会话）的接口。
type ChatService interface {
	HandleChat(ctx context.Context, userID, message string) (string, error)
}

type chatService struct {
	turnRepo  repository.TurnRepository
	llmClient llm.Client
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(turnRepo repository.TurnRepository, llmClient llm.Client) ChatService {
	return &chatService{
		turnRepo:  turnRepo,
		llmClient: llmClient,
	}
}

// HandleChat 处理一轮简单对话：校验输入、用最近的历史拼接 prompt、
// 调用模型、尽力持久化本轮记录后返回回复。
func (s *chatService) HandleChat(ctx context.Context, userID, message string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", apperr.Validation("User ID is required")
	}
	if strings.TrimSpace(message) == "" {
		return "", apperr.Validation("Message cannot be empty")
	}
	if utf8.RuneCountInString(message) > maxMessageLen {
		return "", apperr.Validation("Message too long (max 2000 characters)")
	}

	prompt, err := s.buildPrompt(ctx, userID, message)
	if err != nil {
		log.Error("HandleChat: failed to load recent history", err)
		return "", apperr.Validation("Failed to retrieve chat history")
	}

	reply, err := s.llmClient.GenerateResponse(ctx, prompt)
	if err != nil {
		log.Error("HandleChat: model call failed", err)
		return "", apperr.Unavailable("AI service unavailable")
	}

	// 模型已经成功回复，存储失败不阻塞请求，只记录
	turn := model.ChatTurn{UserID: userID, UserInput: message, BotReply: reply}
	if err := s.turnRepo.Insert(ctx, turn); err != nil {
		log.Error("HandleChat: failed to store chat turn", err)
	}

	log.Infof("Chat handled successfully for user: %s", userID)
	return reply, nil
}

// buildPrompt 取用户最近 historyWindow 轮对话，从旧到新拼接成模型输入。
func (s *chatService) buildPrompt(ctx context.Context, userID, message string) (string, error) {
	turns, err := s.turnRepo.FindRecent(ctx, userID, historyWindow)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, t := range turns {
		b.WriteString(fmt.Sprintf("User: %s\nBot: %s\n", t.UserInput, t.BotReply))
	}
	b.WriteString(fmt.Sprintf("User: %s\nBot:", message))
	return b.String(), nil
}
