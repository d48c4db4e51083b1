package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vision-architect-api/internal/application/director"
	"vision-architect-api/internal/config"
	"vision-architect-api/internal/interfaces/http/dto"
	apperrors "vision-architect-api/pkg/errors"
)

// VideoPlanHandler 视频分镜计划处理器
type VideoPlanHandler struct {
	cfg     *config.Config
	service *director.Service
}

// NewVideoPlanHandler 创建视频分镜计划处理器
func NewVideoPlanHandler(cfg *config.Config, service *director.Service) *VideoPlanHandler {
	return &VideoPlanHandler{
		cfg:     cfg,
		service: service,
	}
}

// Generate 生成视频分镜计划
// @Summary 生成视频分镜计划
// @Description 校验请求、调用模型并返回规范化后的分镜计划
// @Tags VideoPlan
// @Accept json
// @Produce json
// @Param request body dto.VideoPlanRequest true "生成请求"
// @Success 200 {object} plan.VideoPlan
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/generate-video-plan [post]
func (h *VideoPlanHandler) Generate(c *gin.Context) {
	var body dto.VideoPlanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		dto.Error(c, apperrors.New(apperrors.CodeInvalidParam, "request body must be valid JSON"))
		return
	}

	req, err := body.Validate(h.cfg)
	if err != nil {
		dto.Error(c, err)
		return
	}
	if key := resolveClientKey(c, req.ClientAPIKey); key != "" {
		req.ClientAPIKey = key
	}

	result, err := h.service.Dispatch(c.Request.Context(), req)
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Plan)
}
