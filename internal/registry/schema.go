// Package registry 提供模型能力注册表
package registry

// VideoPlanSchema videoPlan 能力的内置响应 Schema。
// 模型未单独指定 Schema 时作为兜底，格式遵循 Gemini responseSchema 约定。
var VideoPlanSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"mode": map[string]any{
			"type": "STRING",
			"enum": []string{"video_plan"},
		},
		"thumbnail": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"prompt":      map[string]any{"type": "STRING"},
				"title":       map[string]any{"type": "STRING"},
				"description": map[string]any{"type": "STRING"},
			},
			"required": []string{"prompt"},
		},
		"scenes": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"id":          map[string]any{"type": "STRING"},
					"title":       map[string]any{"type": "STRING"},
					"prompt":      map[string]any{"type": "STRING"},
					"summary":     map[string]any{"type": "STRING"},
					"description": map[string]any{"type": "STRING"},
					"voiceover":   map[string]any{"type": "STRING"},
					"duration":    map[string]any{"type": "NUMBER"},
				},
				"required": []string{"prompt"},
			},
		},
	},
	"required": []string{"mode", "thumbnail", "scenes"},
}

// ImagePromptSchema imagePrompt 能力的内置响应 Schema。
// 字段名与提示词模板及解析器约定一致：prompt/negativePrompt/notes。
var ImagePromptSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"prompt":         map[string]any{"type": "STRING"},
		"negativePrompt": map[string]any{"type": "STRING"},
		"notes":          map[string]any{"type": "STRING"},
	},
	"required": []string{"prompt"},
}
