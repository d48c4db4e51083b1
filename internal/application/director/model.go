// Package director 实现生成请求的统一调度：
// 选择提供商、解析凭证、构建提示词、发起调用并整形响应。
package director

import (
	"vision-architect-api/internal/application/plan"
	"vision-architect-api/internal/registry"
)

// Mode 请求模式
type Mode string

// 支持的模式
const (
	ModeImagePrompt Mode = "image_prompt"
	ModeVideoPlan   Mode = "video_plan"
)

// GlossaryEntry 风格词条
type GlossaryEntry struct {
	Label          string `json:"label"`
	Category       string `json:"category"`
	PromptFragment string `json:"promptFragment"`
}

// ImagePromptPayload image_prompt 模式的载荷
type ImagePromptPayload struct {
	VisionSeed      string                   `json:"visionSeed"`
	SelectedOptions []string                 `json:"selectedOptions"`
	Glossary        map[string]GlossaryEntry `json:"glossary"`
}

// VideoPlanPayload video_plan 模式的载荷
type VideoPlanPayload struct {
	ScriptText  string `json:"scriptText"`
	Tone        string `json:"tone"`
	VisualStyle string `json:"visualStyle"`
	AspectRatio string `json:"aspectRatio"`
	LLMModel    string `json:"llmModel,omitempty"`
}

// Request 经过校验、已解析出目标模型的调度请求。
// ImagePrompt 与 VideoPlan 中恰好一个非空，与 Mode 对应。
type Request struct {
	Mode         Mode
	Model        registry.ModelDefinition
	ClientAPIKey string
	ImagePrompt  *ImagePromptPayload
	VideoPlan    *VideoPlanPayload
}

// ImagePromptResult image_prompt 模式的生成结果
type ImagePromptResult struct {
	PromptText string            `json:"promptText"`
	Images     []string          `json:"images"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Result 调度结果，按模式填充对应字段
type Result struct {
	Mode        Mode               `json:"mode"`
	Provider    registry.Provider  `json:"provider"`
	ImagePrompt *ImagePromptResult `json:"-"`
	Plan        *plan.VideoPlan    `json:"-"`
}
