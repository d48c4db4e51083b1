package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vision-architect-api/internal/application/loop"
	"vision-architect-api/internal/config"
	"vision-architect-api/internal/interfaces/http/dto"
	apperrors "vision-architect-api/pkg/errors"
)

// LoopCycleHandler 循环周期处理器
type LoopCycleHandler struct {
	cfg     *config.Config
	service *loop.Service
}

// NewLoopCycleHandler 创建循环周期处理器
func NewLoopCycleHandler(cfg *config.Config, service *loop.Service) *LoopCycleHandler {
	return &LoopCycleHandler{
		cfg:     cfg,
		service: service,
	}
}

// Generate 生成下一个循环周期
// @Summary 生成循环周期
// @Description 基于历史周期日志生成下一个周期，保持连续性锁
// @Tags LoopCycle
// @Accept json
// @Produce json
// @Param request body dto.LoopCycleRequest true "生成请求"
// @Success 200 {object} loop.LoopCycle
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/generate-loop-cycle [post]
func (h *LoopCycleHandler) Generate(c *gin.Context) {
	var body dto.LoopCycleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		dto.Error(c, apperrors.New(apperrors.CodeInvalidParam, "request body must be valid JSON"))
		return
	}

	req, err := body.Validate()
	if err != nil {
		dto.Error(c, err)
		return
	}
	if key := resolveClientKey(c, req.ClientAPIKey); key != "" {
		req.ClientAPIKey = key
	}

	cycle, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		dto.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, cycle)
}
