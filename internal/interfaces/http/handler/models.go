package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vision-architect-api/internal/interfaces/http/dto"
	"vision-architect-api/internal/registry"
	apperrors "vision-architect-api/pkg/errors"
)

// ModelsHandler 模型列表处理器
type ModelsHandler struct{}

// NewModelsHandler 创建模型列表处理器
func NewModelsHandler() *ModelsHandler {
	return &ModelsHandler{}
}

// List 列出可用模型
// @Summary 列出可用模型
// @Description 按能力过滤已注册的模型
// @Tags Models
// @Produce json
// @Param capability query string false "能力过滤：imagePrompt / videoPlan"
// @Success 200 {object} dto.ModelListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/models [get]
func (h *ModelsHandler) List(c *gin.Context) {
	var definitions []registry.ModelDefinition

	capability := strings.TrimSpace(c.Query("capability"))
	switch registry.Capability(capability) {
	case registry.CapabilityImagePrompt, registry.CapabilityVideoPlan:
		definitions = registry.ListModelsForCapability(registry.Capability(capability))
	default:
		if capability != "" {
			dto.Error(c, apperrors.New(apperrors.CodeInvalidParam,
				fmt.Sprintf("invalid capability: %s", capability)))
			return
		}
		// 不过滤时合并所有能力的模型，保持注册顺序
		seen := make(map[string]bool)
		for _, capKind := range []registry.Capability{registry.CapabilityImagePrompt, registry.CapabilityVideoPlan} {
			for _, def := range registry.ListModelsForCapability(capKind) {
				if !seen[def.ID] {
					seen[def.ID] = true
					definitions = append(definitions, def)
				}
			}
		}
	}

	models := make([]dto.ModelInfo, 0, len(definitions))
	for _, def := range definitions {
		info := dto.ModelInfo{
			ID:       def.ID,
			Label:    def.Label,
			Provider: string(def.Provider),
		}
		for _, capKind := range []registry.Capability{registry.CapabilityImagePrompt, registry.CapabilityVideoPlan} {
			if def.SupportsCapability(capKind) {
				info.Capabilities = append(info.Capabilities, string(capKind))
			}
		}
		models = append(models, info)
	}

	c.JSON(http.StatusOK, dto.ModelListResponse{Models: models})
}
