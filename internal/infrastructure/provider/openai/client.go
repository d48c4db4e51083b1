// Package openai 提供 OpenAI Chat Completion 客户端封装
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"vision-architect-api/internal/config"
)

// ConfigurationError 配置错误（缺少 API Key），在任何网络调用前返回
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// APIError 上游 API 错误，携带上游状态码
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai api error (status %d): %s", e.Status, e.Message)
}

// Usage 单次调用的 token 使用量
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Client OpenAI 客户端
type Client struct {
	client       *goopenai.Client
	cfg          config.OpenAIConfig
	defaultModel string
	configured   bool
}

// NewClient 创建 OpenAI 客户端。未配置 Key 时返回不可用客户端，调用时报配置错误。
func NewClient(cfg *config.OpenAIConfig) *Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &Client{configured: false, cfg: *cfg, defaultModel: cfg.Model}
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		client:       goopenai.NewClientWithConfig(clientConfig),
		cfg:          *cfg,
		defaultModel: cfg.Model,
		configured:   true,
	}
}

// WithAPIKey 返回使用指定 Key 的客户端副本（调用方自带 Key 时使用）
func (c *Client) WithAPIKey(apiKey string) *Client {
	if strings.TrimSpace(apiKey) == "" {
		return c
	}
	cfg := c.cfg
	cfg.APIKey = apiKey
	return NewClient(&cfg)
}

// Configured 返回客户端是否已配置 Key
func (c *Client) Configured() bool {
	return c.configured
}

// DefaultModel 返回配置的默认模型
func (c *Client) DefaultModel() string {
	return c.defaultModel
}

// GenerateJSON 以 json_object 响应格式执行一次 Chat Completion，
// 返回 choices[0].message.content 的原始文本。
func (c *Client) GenerateJSON(ctx context.Context, model, systemPrompt, userPrompt string) (string, *Usage, error) {
	if !c.configured {
		return "", nil, &ConfigurationError{Message: "openai api key is not configured"}
	}
	if model == "" {
		model = c.defaultModel
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", nil, &APIError{
				Status:  apiErr.HTTPStatusCode,
				Message: apiErr.Message,
			}
		}
		return "", nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil, &APIError{
			Status:  502,
			Message: "openai returned no choices",
		}
	}

	usage := &Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}
