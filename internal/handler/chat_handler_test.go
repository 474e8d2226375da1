package handler

import (
	"errors"
	"net/http"
	"testing"
)

func TestChatReturnsReply(t *testing.T) {
	r := setupRouter(&fakeLLM{reply: "generated"})

	resp := doJSON(t, r, http.MethodPost, "/api/chat", map[string]string{"user_id": "u1", "message": "hi"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	var body struct {
		Response string `json:"response"`
	}
	decodeBody(t, resp, &body)
	if body.Response != "generated" {
		t.Fatalf("unexpected response: %q", body.Response)
	}
}

func TestChatValidation(t *testing.T) {
	r := setupRouter(&fakeLLM{reply: "ok"})

	for _, body := range []map[string]string{
		{"message": "hi"},
		{"user_id": "u1"},
		{"user_id": "u1", "message": "   "},
	} {
		resp := doJSON(t, r, http.MethodPost, "/api/chat", body)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %v, got %d", body, resp.Code)
		}
	}
}

func TestChatModelUnavailable(t *testing.T) {
	r := setupRouter(&fakeLLM{err: errors.New("upstream down")})

	resp := doJSON(t, r, http.MethodPost, "/api/chat", map[string]string{"user_id": "u1", "message": "hi"})
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestChatInvalidJSON(t *testing.T) {
	r := setupRouter(&fakeLLM{reply: "ok"})

	resp := doJSON(t, r, http.MethodPost, "/api/chat", "not an object")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
