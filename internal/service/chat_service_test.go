package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gemini-chat-go/internal/model"
)

// fakeTurnRepo 是 TurnRepository 的内存实现。
type fakeTurnRepo struct {
	turns     []model.ChatTurn
	insertErr error
	findErr   error
}

func (f *fakeTurnRepo) Insert(_ context.Context, turn model.ChatTurn) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeTurnRepo) FindRecent(_ context.Context, userID string, limit int) ([]model.ChatTurn, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var matched []model.ChatTurn
	for _, t := range f.turns {
		if t.UserID == userID {
			matched = append(matched, t)
		}
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, nil
}

func TestHandleChatValidation(t *testing.T) {
	svc := NewChatService(&fakeTurnRepo{}, &fakeLLM{reply: "ok"})
	ctx := context.Background()

	for name, tc := range map[string]struct{ userID, message string }{
		"empty user id":      {"", "hi"},
		"whitespace user id": {"   ", "hi"},
		"empty message":      {"u1", ""},
		"whitespace message": {"u1", "  \t "},
		"message too long":   {"u1", strings.Repeat("a", 2001)},
	} {
		_, err := svc.HandleChat(ctx, tc.userID, tc.message)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		assertAppErr(t, err, 400)
	}
}

func TestHandleChatMessageAtLimitAccepted(t *testing.T) {
	repo := &fakeTurnRepo{}
	svc := NewChatService(repo, &fakeLLM{reply: "ok"})

	if _, err := svc.HandleChat(context.Background(), "u1", strings.Repeat("a", 2000)); err != nil {
		t.Fatalf("expected 2000-char message to pass, got %v", err)
	}
}

// 长度限制按字符数而不是字节数计，2000 个多字节字符的消息必须被接受。
func TestHandleChatMultibyteMessageAtLimitAccepted(t *testing.T) {
	repo := &fakeTurnRepo{}
	svc := NewChatService(repo, &fakeLLM{reply: "ok"})
	ctx := context.Background()

	if _, err := svc.HandleChat(ctx, "u1", strings.Repeat("你", 2000)); err != nil {
		t.Fatalf("expected 2000-char multibyte message to pass, got %v", err)
	}

	_, err := svc.HandleChat(ctx, "u1", strings.Repeat("你", 2001))
	assertAppErr(t, err, 400)
}

func TestHandleChatPromptWindow(t *testing.T) {
	repo := &fakeTurnRepo{}
	for i := 1; i <= 12; i++ {
		repo.turns = append(repo.turns, model.ChatTurn{
			UserID:    "u1",
			UserInput: fmt.Sprintf("q%d", i),
			BotReply:  fmt.Sprintf("a%d", i),
		})
	}
	llmClient := &fakeLLM{reply: "done"}
	svc := NewChatService(repo, llmClient)

	if _, err := svc.HandleChat(context.Background(), "u1", "latest"); err != nil {
		t.Fatalf("HandleChat err: %v", err)
	}

	// 只回看最近 10 轮，最旧的两轮不进 prompt
	if strings.Contains(llmClient.lastPrompt, "q1\n") || strings.Contains(llmClient.lastPrompt, "q2\n") {
		t.Fatalf("prompt contains turns outside the window: %q", llmClient.lastPrompt)
	}
	if !strings.HasPrefix(llmClient.lastPrompt, "User: q3\nBot: a3\n") {
		t.Fatalf("prompt does not start with oldest in-window turn: %q", llmClient.lastPrompt)
	}
	if !strings.HasSuffix(llmClient.lastPrompt, "User: q12\nBot: a12\nUser: latest\nBot:") {
		t.Fatalf("prompt does not end with current message: %q", llmClient.lastPrompt)
	}
}

func TestHandleChatPersistsTurn(t *testing.T) {
	repo := &fakeTurnRepo{}
	svc := NewChatService(repo, &fakeLLM{reply: "the reply"})

	reply, err := svc.HandleChat(context.Background(), "u1", "hello")
	if err != nil {
		t.Fatalf("HandleChat err: %v", err)
	}
	if reply != "the reply" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if len(repo.turns) != 1 {
		t.Fatalf("expected 1 stored turn, got %d", len(repo.turns))
	}
	turn := repo.turns[0]
	if turn.UserID != "u1" || turn.UserInput != "hello" || turn.BotReply != "the reply" {
		t.Fatalf("unexpected stored turn: %+v", turn)
	}
}

func TestHandleChatStorageFailureIsBestEffort(t *testing.T) {
	repo := &fakeTurnRepo{insertErr: errors.New("db down")}
	svc := NewChatService(repo, &fakeLLM{reply: "still fine"})

	reply, err := svc.HandleChat(context.Background(), "u1", "hello")
	if err != nil {
		t.Fatalf("expected success despite storage failure, got %v", err)
	}
	if reply != "still fine" {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestHandleChatModelFailure(t *testing.T) {
	repo := &fakeTurnRepo{}
	svc := NewChatService(repo, &fakeLLM{err: errors.New("quota exceeded")})

	_, err := svc.HandleChat(context.Background(), "u1", "hello")
	assertAppErr(t, err, 503)
	if len(repo.turns) != 0 {
		t.Fatal("expected no turn persisted after model failure")
	}
}

func TestHandleChatHistoryReadFailure(t *testing.T) {
	repo := &fakeTurnRepo{findErr: errors.New("cursor error")}
	svc := NewChatService(repo, &fakeLLM{reply: "ok"})

	_, err := svc.HandleChat(context.Background(), "u1", "hello")
	assertAppErr(t, err, 400)
}
