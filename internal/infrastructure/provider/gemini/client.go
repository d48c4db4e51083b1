// Package gemini 提供 Gemini REST API 客户端
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vision-architect-api/internal/config"
	"vision-architect-api/pkg/logger"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client Gemini REST 客户端
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建 Gemini 客户端
func NewClient(cfg *config.GeminiConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithAPIKey 返回使用指定 Key 的客户端副本（调用方自带 Key 时使用）
func (c *Client) WithAPIKey(apiKey string) *Client {
	if strings.TrimSpace(apiKey) == "" {
		return c
	}
	clone := *c
	clone.apiKey = apiKey
	return &clone
}

// GenerateText 调用 generateContent 并拼接所有候选的文本片段。
// 空结果由调用方判定为上游失败。
func (c *Client) GenerateText(ctx context.Context, model string, req *GenerateContentRequest) (string, error) {
	body, err := c.post(ctx, fmt.Sprintf("models/%s:generateContent", url.PathEscape(model)), req)
	if err != nil {
		return "", err
	}

	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		logger.Error(ctx, "failed to decode gemini response", err, "raw", truncate(string(body), 2048))
		return "", &APIError{
			Status:  http.StatusBadGateway,
			Message: "malformed response from gemini",
			Details: truncate(string(body), 2048),
		}
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// GenerateVideo 发起 Veo 视频生成，返回长时操作名
func (c *Client) GenerateVideo(ctx context.Context, model string, req GenerateVideoRequest) (string, error) {
	payload := map[string]any{
		"instances": []map[string]any{
			{"prompt": req.Prompt},
		},
	}
	parameters := map[string]any{}
	if req.AspectRatio != "" {
		parameters["aspectRatio"] = req.AspectRatio
	}
	if req.Duration > 0 {
		parameters["durationSeconds"] = req.Duration
	}
	if len(parameters) > 0 {
		payload["parameters"] = parameters
	}

	body, err := c.post(ctx, fmt.Sprintf("models/%s:predictLongRunning", url.PathEscape(model)), payload)
	if err != nil {
		return "", err
	}

	var op Operation
	if err := json.Unmarshal(body, &op); err != nil {
		return "", &APIError{
			Status:  http.StatusBadGateway,
			Message: "malformed operation response from gemini",
			Details: truncate(string(body), 2048),
		}
	}
	if op.Name == "" {
		return "", &APIError{
			Status:  http.StatusBadGateway,
			Message: "gemini did not return an operation name",
			Details: truncate(string(body), 2048),
		}
	}
	return op.Name, nil
}

// GetOperation 查询长时操作状态
func (c *Client) GetOperation(ctx context.Context, name string) (*Operation, error) {
	body, err := c.do(ctx, http.MethodGet, strings.TrimPrefix(name, "/"), nil)
	if err != nil {
		return nil, err
	}

	var op Operation
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, &APIError{
			Status:  http.StatusBadGateway,
			Message: "malformed operation response from gemini",
			Details: truncate(string(body), 2048),
		}
	}
	return &op, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, payload)
}

// do 执行请求。响应体总是先按文本读出，这样即使 JSON 解析失败也能带上原始内容上报。
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, &ConfigurationError{Message: "gemini api key is not configured"}
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", c.baseURL, path, url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, newAPIError(httpResp.StatusCode, body)
	}
	return body, nil
}

// newAPIError 从错误响应构造 APIError，优先提取 error.message
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status:  status,
		Message: fmt.Sprintf("gemini request failed with status %d", status),
		Details: truncate(string(body), 2048),
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "... [truncated]"
}
