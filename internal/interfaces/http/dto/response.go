// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"github.com/gin-gonic/gin"

	"vision-architect-api/internal/application/plan"
	apperrors "vision-architect-api/pkg/errors"
)

// ErrorResponse 通用错误响应
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// DirectorErrorResponse director 路由的错误响应
type DirectorErrorResponse struct {
	Success bool   `json:"success"`
	Mode    string `json:"mode,omitempty"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// DirectorImagePromptResponse image_prompt 模式的成功响应
type DirectorImagePromptResponse struct {
	Success    bool              `json:"success"`
	Mode       string            `json:"mode"`
	Provider   string            `json:"provider"`
	PromptText string            `json:"promptText"`
	Images     []string          `json:"images"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// DirectorVideoPlanResponse video_plan 模式的成功响应
type DirectorVideoPlanResponse struct {
	Success  bool            `json:"success"`
	Mode     string          `json:"mode"`
	Provider string          `json:"provider"`
	Plan     *plan.VideoPlan `json:"plan"`
}

// ModelInfo 模型列表项
type ModelInfo struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Provider     string   `json:"provider"`
	Capabilities []string `json:"capabilities"`
}

// ModelListResponse 模型列表响应
type ModelListResponse struct {
	Models []ModelInfo `json:"models"`
}

// Error 写出通用错误响应，HTTP 状态码取自应用错误
func Error(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		Error:   appErr.Message,
		Details: appErr.Detail,
		TraceID: c.GetString("trace_id"),
	})
}

// DirectorError 写出 director 路由的错误响应
func DirectorError(c *gin.Context, mode string, err error) {
	appErr := apperrors.AsAppError(err)
	c.JSON(appErr.HTTPStatus, DirectorErrorResponse{
		Success: false,
		Mode:    mode,
		Error:   appErr.Message,
		Status:  appErr.HTTPStatus,
		Details: appErr.Detail,
		TraceID: c.GetString("trace_id"),
	})
}
