package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vision-architect-api/internal/application/director"
	"vision-architect-api/internal/config"
	"vision-architect-api/internal/interfaces/http/dto"
	apperrors "vision-architect-api/pkg/errors"
)

// ProviderAPIKeyHeader 调用方自带提供商 Key 的请求头
const ProviderAPIKeyHeader = "X-Provider-Api-Key"

// DirectorHandler 统一调度处理器
type DirectorHandler struct {
	cfg     *config.Config
	service *director.Service
}

// NewDirectorHandler 创建统一调度处理器
func NewDirectorHandler(cfg *config.Config, service *director.Service) *DirectorHandler {
	return &DirectorHandler{
		cfg:     cfg,
		service: service,
	}
}

// Handle 统一调度接口
// @Summary 统一生成调度
// @Description 按 mode 调度 image_prompt / video_plan 生成
// @Tags Director
// @Accept json
// @Produce json
// @Param request body dto.DirectorRequest true "调度请求"
// @Success 200 {object} dto.DirectorVideoPlanResponse
// @Failure 400 {object} dto.DirectorErrorResponse
// @Router /api/director [post]
func (h *DirectorHandler) Handle(c *gin.Context) {
	var body dto.DirectorRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		dto.DirectorError(c, "", apperrors.New(apperrors.CodeInvalidParam, "request body must be valid JSON"))
		return
	}

	req, err := body.Validate(h.cfg)
	if err != nil {
		dto.DirectorError(c, body.Mode, err)
		return
	}
	if key := resolveClientKey(c, req.ClientAPIKey); key != "" {
		req.ClientAPIKey = key
	}

	result, err := h.service.Dispatch(c.Request.Context(), req)
	if err != nil {
		dto.DirectorError(c, string(req.Mode), err)
		return
	}

	switch result.Mode {
	case director.ModeImagePrompt:
		c.JSON(http.StatusOK, dto.DirectorImagePromptResponse{
			Success:    true,
			Mode:       string(result.Mode),
			Provider:   string(result.Provider),
			PromptText: result.ImagePrompt.PromptText,
			Images:     result.ImagePrompt.Images,
			Metadata:   result.ImagePrompt.Metadata,
		})
	case director.ModeVideoPlan:
		c.JSON(http.StatusOK, dto.DirectorVideoPlanResponse{
			Success:  true,
			Mode:     string(result.Mode),
			Provider: string(result.Provider),
			Plan:     result.Plan,
		})
	}
}

// resolveClientKey 解析调用方自带的 Key，请求头优先于请求体
func resolveClientKey(c *gin.Context, bodyKey string) string {
	if headerKey := strings.TrimSpace(c.GetHeader(ProviderAPIKeyHeader)); headerKey != "" {
		return headerKey
	}
	return strings.TrimSpace(bodyKey)
}
