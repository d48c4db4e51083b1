package gemini

import "fmt"

// ConfigurationError 配置错误（缺少 API Key 等），不可重试，对应 HTTP 500
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// APIError 上游 API 错误（非 2xx 或响应体不可解析），携带上游状态码原样透传
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gemini request failed with status %d", e.Status)
}
