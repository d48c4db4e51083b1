// Package registry 提供模型能力注册表
package registry

// Provider 生成服务提供商标识
type Provider string

// 支持的提供商
const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Capability 模型能力标识
type Capability string

// 支持的能力
const (
	CapabilityImagePrompt Capability = "imagePrompt"
	CapabilityVideoPlan   Capability = "videoPlan"
)

// CapabilityConfig 单个能力的响应约束
// 每个能力必须携带 MIME 类型与 JSON Schema，两者共同描述期望的响应形状。
type CapabilityConfig struct {
	ResponseMIMEType string
	ResponseSchema   map[string]any
}

// ModelDefinition 模型定义
type ModelDefinition struct {
	ID           string
	Label        string
	Provider     Provider
	Capabilities map[Capability]CapabilityConfig
}

// SupportsCapability 检查模型是否支持指定能力
func (m ModelDefinition) SupportsCapability(capability Capability) bool {
	_, ok := m.Capabilities[capability]
	return ok
}

// 注册表在进程启动时构建一次，之后只读，可被并发请求安全共享。
var (
	modelOrder []string
	modelsByID map[string]ModelDefinition
)

func init() {
	definitions := []ModelDefinition{
		{
			ID:       "gemini-2.5-flash",
			Label:    "Gemini 2.5 Flash",
			Provider: ProviderGemini,
			Capabilities: map[Capability]CapabilityConfig{
				CapabilityImagePrompt: {
					ResponseMIMEType: "application/json",
					ResponseSchema:   ImagePromptSchema,
				},
				CapabilityVideoPlan: {
					ResponseMIMEType: "application/json",
					ResponseSchema:   VideoPlanSchema,
				},
			},
		},
		{
			ID:       "gemini-2.5-pro",
			Label:    "Gemini 2.5 Pro",
			Provider: ProviderGemini,
			Capabilities: map[Capability]CapabilityConfig{
				CapabilityImagePrompt: {
					ResponseMIMEType: "application/json",
					ResponseSchema:   ImagePromptSchema,
				},
				CapabilityVideoPlan: {
					ResponseMIMEType: "application/json",
					ResponseSchema:   VideoPlanSchema,
				},
			},
		},
		{
			ID:       "gpt-4o-mini",
			Label:    "GPT-4o mini",
			Provider: ProviderOpenAI,
			Capabilities: map[Capability]CapabilityConfig{
				CapabilityImagePrompt: {
					ResponseMIMEType: "application/json",
					ResponseSchema:   ImagePromptSchema,
				},
				CapabilityVideoPlan: {
					ResponseMIMEType: "application/json",
					ResponseSchema:   VideoPlanSchema,
				},
			},
		},
		{
			ID:       "gpt-4o",
			Label:    "GPT-4o",
			Provider: ProviderOpenAI,
			Capabilities: map[Capability]CapabilityConfig{
				CapabilityVideoPlan: {
					ResponseMIMEType: "application/json",
					ResponseSchema:   VideoPlanSchema,
				},
			},
		},
	}

	modelsByID = make(map[string]ModelDefinition, len(definitions))
	modelOrder = make([]string, 0, len(definitions))
	for _, def := range definitions {
		modelsByID[def.ID] = def
		modelOrder = append(modelOrder, def.ID)
	}
}

// GetModelDefinition 按 ID 查找模型定义
func GetModelDefinition(id string) (ModelDefinition, bool) {
	def, ok := modelsByID[id]
	return def, ok
}

// GetCapabilityConfig 查找模型在指定能力下的响应约束
func GetCapabilityConfig(id string, capability Capability) (CapabilityConfig, bool) {
	def, ok := modelsByID[id]
	if !ok {
		return CapabilityConfig{}, false
	}
	cfg, ok := def.Capabilities[capability]
	return cfg, ok
}

// ListModelsForCapability 列出支持指定能力的模型（按注册顺序）
func ListModelsForCapability(capability Capability) []ModelDefinition {
	var result []ModelDefinition
	for _, id := range modelOrder {
		def := modelsByID[id]
		if def.SupportsCapability(capability) {
			result = append(result, def)
		}
	}
	return result
}

// DefaultModelForCapability 返回支持指定能力的第一个注册模型
func DefaultModelForCapability(capability Capability) (ModelDefinition, bool) {
	models := ListModelsForCapability(capability)
	if len(models) == 0 {
		return ModelDefinition{}, false
	}
	return models[0], true
}
