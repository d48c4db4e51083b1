package dto

import (
	"fmt"
	"strings"

	"vision-architect-api/internal/application/director"
	"vision-architect-api/internal/application/plan"
	"vision-architect-api/internal/config"
	"vision-architect-api/internal/registry"
	apperrors "vision-architect-api/pkg/errors"
)

// VideoPlanRequest 视频分镜计划生成请求
type VideoPlanRequest struct {
	ScriptText  string `json:"scriptText"`
	Tone        string `json:"tone"`
	VisualStyle string `json:"visualStyle"`
	AspectRatio string `json:"aspectRatio"`
	LLMModel    string `json:"llmModel,omitempty"`
	APIKey      string `json:"apiKey,omitempty"`
}

// Validate 校验请求并解析目标模型。
// 校验按固定顺序执行，命中第一个违规即返回，错误信息指明出错字段。
func (r *VideoPlanRequest) Validate(cfg *config.Config) (*director.Request, error) {
	payload := director.VideoPlanPayload{
		ScriptText:  strings.TrimSpace(r.ScriptText),
		Tone:        strings.TrimSpace(r.Tone),
		VisualStyle: strings.TrimSpace(r.VisualStyle),
		AspectRatio: strings.TrimSpace(r.AspectRatio),
		LLMModel:    strings.TrimSpace(r.LLMModel),
	}

	model, err := validateVideoPlanPayload(cfg, &payload)
	if err != nil {
		return nil, err
	}

	return &director.Request{
		Mode:         director.ModeVideoPlan,
		Model:        model,
		ClientAPIKey: strings.TrimSpace(r.APIKey),
		VideoPlan:    &payload,
	}, nil
}

// validateVideoPlanPayload video_plan 载荷的共用校验：
// 结构 → 枚举 → 模型解析 → 注册表存在性 → 能力支持。
func validateVideoPlanPayload(cfg *config.Config, payload *director.VideoPlanPayload) (registry.ModelDefinition, error) {
	if payload.ScriptText == "" {
		return registry.ModelDefinition{}, apperrors.New(apperrors.CodeInvalidParam, "scriptText is required")
	}
	if payload.Tone == "" {
		return registry.ModelDefinition{}, apperrors.New(apperrors.CodeInvalidParam, "tone is required")
	}
	if payload.VisualStyle == "" {
		return registry.ModelDefinition{}, apperrors.New(apperrors.CodeInvalidParam, "visualStyle is required")
	}
	if payload.AspectRatio == "" {
		return registry.ModelDefinition{}, apperrors.New(apperrors.CodeInvalidParam, "aspectRatio is required")
	}

	if !plan.IsValidTone(payload.Tone) {
		return registry.ModelDefinition{}, apperrors.New(apperrors.CodeInvalidParam,
			fmt.Sprintf("invalid tone: %s", payload.Tone))
	}
	if !plan.IsValidVisualStyle(payload.VisualStyle) {
		return registry.ModelDefinition{}, apperrors.New(apperrors.CodeInvalidParam,
			fmt.Sprintf("invalid visualStyle: %s", payload.VisualStyle))
	}
	if !plan.IsValidAspectRatio(payload.AspectRatio) {
		return registry.ModelDefinition{}, apperrors.New(apperrors.CodeInvalidParam,
			fmt.Sprintf("invalid aspectRatio: %s", payload.AspectRatio))
	}

	return resolveModel(cfg, payload.LLMModel, registry.CapabilityVideoPlan)
}

// resolveModel 解析目标模型：请求未携带时退回配置的默认模型，
// 再检查注册表存在性与能力支持。
func resolveModel(cfg *config.Config, requested string, capability registry.Capability) (registry.ModelDefinition, error) {
	modelID := strings.TrimSpace(requested)
	if modelID == "" {
		modelID = defaultModelID(cfg, capability)
	}

	model, ok := registry.GetModelDefinition(modelID)
	if !ok {
		return registry.ModelDefinition{}, apperrors.New(apperrors.CodeModelNotFound,
			fmt.Sprintf("model not found: %s", modelID))
	}
	if !model.SupportsCapability(capability) {
		return registry.ModelDefinition{}, apperrors.New(apperrors.CodeCapabilityUnsupported,
			fmt.Sprintf("model %s does not support capability %s", modelID, capability))
	}
	return model, nil
}

func defaultModelID(cfg *config.Config, capability registry.Capability) string {
	var configured string
	switch capability {
	case registry.CapabilityImagePrompt:
		configured = cfg.Director.DefaultImagePromptModel
	case registry.CapabilityVideoPlan:
		configured = cfg.Director.DefaultVideoPlanModel
	}
	if strings.TrimSpace(configured) != "" {
		return strings.TrimSpace(configured)
	}
	if def, ok := registry.DefaultModelForCapability(capability); ok {
		return def.ID
	}
	return ""
}
