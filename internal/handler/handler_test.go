package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"gemini-chat-go/internal/model"
	"gemini-chat-go/internal/service"
	"gemini-chat-go/pkg/token"
)

// 本包的测试用真实 service 加内存仓储搭一个完整的路由，
// 覆盖 HTTP 层的状态码映射和响应形状。

type fakeChatRepo struct {
	owners map[string]*model.ChatOwner
}

func (f *fakeChatRepo) FindOwner(_ context.Context, userID string) (*model.ChatOwner, error) {
	owner, ok := f.owners[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return owner, nil
}

func (f *fakeChatRepo) InsertOwner(_ context.Context, owner *model.ChatOwner) error {
	f.owners[owner.UserID] = owner
	return nil
}

func (f *fakeChatRepo) PushChat(_ context.Context, userID string, chat model.Chat) error {
	if owner, ok := f.owners[userID]; ok {
		owner.Chats = append(owner.Chats, chat)
	}
	return nil
}

func (f *fakeChatRepo) AppendMessages(_ context.Context, userID, chatID string, messages []model.Message) (int64, error) {
	owner, ok := f.owners[userID]
	if !ok {
		return 0, nil
	}
	for i := range owner.Chats {
		if owner.Chats[i].ChatID == chatID {
			owner.Chats[i].History = append(owner.Chats[i].History, messages...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeChatRepo) RemoveChat(_ context.Context, userID, chatID string) (int64, error) {
	owner, ok := f.owners[userID]
	if !ok {
		return 0, nil
	}
	for i := range owner.Chats {
		if owner.Chats[i].ChatID == chatID {
			owner.Chats = append(owner.Chats[:i], owner.Chats[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeChatRepo) RenameChat(_ context.Context, userID, chatID, title string) (int64, error) {
	owner, ok := f.owners[userID]
	if !ok {
		return 0, nil
	}
	for i := range owner.Chats {
		if owner.Chats[i].ChatID == chatID && owner.Chats[i].Title != title {
			owner.Chats[i].Title = title
			return 1, nil
		}
	}
	return 0, nil
}

type fakeTurnRepo struct {
	turns     []model.ChatTurn
	insertErr error
}

func (f *fakeTurnRepo) Insert(_ context.Context, turn model.ChatTurn) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeTurnRepo) FindRecent(_ context.Context, userID string, limit int) ([]model.ChatTurn, error) {
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

type fakeUserRepo struct {
	users map[string]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) (string, error) {
	user.ID = bson.NewObjectID()
	f.users[user.Username] = user
	return user.ID.Hex(), nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) GenerateResponse(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func setupRouter(llmClient *fakeLLM) *gin.Engine {
	gin.SetMode(gin.TestMode)

	chatRepo := &fakeChatRepo{owners: make(map[string]*model.ChatOwner)}
	turnRepo := &fakeTurnRepo{}
	userRepo := &fakeUserRepo{users: make(map[string]*model.User)}
	jwtManager := token.NewJWTManager("test-secret", 1)

	chatHandler := NewChatHandler(service.NewChatService(turnRepo, llmClient))
	convHandler := NewConversationHandler(service.NewConversationService(chatRepo, llmClient))
	userHandler := NewUserHandler(service.NewUserService(userRepo, jwtManager))

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/chat", chatHandler.Chat)
		api.POST("/new_chat", convHandler.CreateChat)
		api.POST("/send_message", convHandler.SendMessage)
		api.GET("/get_chats/:user_id", convHandler.GetChats)
		api.GET("/chat/:user_id/:chat_id", convHandler.GetChatHistory)
		api.DELETE("/chat/:user_id/:chat_id", convHandler.DeleteChat)
		api.PATCH("/chat/:user_id/:chat_id/rename", convHandler.RenameChat)
		api.POST("/signup", userHandler.Signup)
		api.POST("/login", userHandler.Login)
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
}

func mustCreateChat(t *testing.T, r *gin.Engine, userID, title string) string {
	t.Helper()
	resp := doJSON(t, r, http.MethodPost, "/api/new_chat", map[string]string{"user_id": userID, "title": title})
	if resp.Code != http.StatusOK {
		t.Fatalf("new_chat: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	var body struct {
		ChatID string `json:"chat_id"`
	}
	decodeBody(t, resp, &body)
	if body.ChatID == "" {
		t.Fatal("new_chat: empty chat_id")
	}
	return body.ChatID
}
