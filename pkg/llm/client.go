// Package llm 提供与生成式大语言模型交互的客户端。
package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"gemini-chat-go/internal/config"
)

// Client 定义了生成式模型客户端的接口。
// 单次调用、直接返回，不做重试和流式传输。
type Client interface {
	// GenerateResponse 将 prompt 发送给模型并返回生成的文本。
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

type geminiClient struct {
	cfg    config.LLMConfig
	client *genai.Client
}

// NewClient 基于配置创建一个 Gemini 客户端。
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: API key 未配置")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: 初始化 Gemini 客户端失败: %w", err)
	}
	return &geminiClient{cfg: cfg, client: client}, nil
}

// GenerateResponse 调用 Gemini generateContent 接口并返回完整文本。
func (c *geminiClient) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("llm: 调用模型失败: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("llm: 模型返回了空响应")
	}
	return text, nil
}
