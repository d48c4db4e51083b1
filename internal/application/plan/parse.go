package plan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"vision-architect-api/internal/application/genutil"
)

// 历史上提示词模板多次改版，上游模型输出的字段名随之漂移。
// 同义词表按优先级排列，第一个非空命中生效；该表不可合并简化。
var (
	scenePromptSynonyms      = []string{"prompt", "visual_prompt"}
	sceneTitleSynonyms       = []string{"title", "segment_title"}
	sceneDescriptionSynonyms = []string{"description", "scene_description"}
	sceneVoiceoverSynonyms   = []string{"voiceover", "voice_over"}
	sceneDurationSynonyms    = []string{"duration", "length"}
	sceneSummarySynonyms     = []string{"summary", "synopsis"}
)

// Parse 从模型原始输出解析 VideoPlan，返回截取后的 JSON 文本用于诊断。
func Parse(rawText string) (*VideoPlan, string, error) {
	jsonText := genutil.ExtractJSONObject(rawText)
	if strings.TrimSpace(jsonText) == "" {
		return nil, jsonText, fmt.Errorf("empty video plan output")
	}

	var value any
	if err := json.Unmarshal([]byte(jsonText), &value); err != nil {
		return nil, jsonText, fmt.Errorf("failed to parse video plan json: %w", err)
	}

	plan, err := Normalize(value)
	return plan, jsonText, err
}

// Normalize 将任意形状的模型输出规范化为 VideoPlan。
// 对同义字段名保持容错，对结构性缺陷快速失败并指出出错字段。
func Normalize(value any) (*VideoPlan, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("video plan must be a JSON object")
	}

	if mode := stringAt(obj, "mode"); mode != ModeVideoPlan {
		return nil, fmt.Errorf("mode must be %q, got %q", ModeVideoPlan, mode)
	}

	thumbValue, ok := obj["thumbnail"]
	if !ok || thumbValue == nil {
		return nil, fmt.Errorf("thumbnail is required")
	}
	thumbObj, ok := thumbValue.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("thumbnail must be an object")
	}
	thumbPrompt := firstNonBlank(thumbObj, scenePromptSynonyms)
	if thumbPrompt == "" {
		return nil, fmt.Errorf("thumbnail.prompt is required")
	}

	scenesValue, ok := obj["scenes"]
	if !ok || scenesValue == nil {
		return nil, fmt.Errorf("scenes must contain at least one scene")
	}
	scenesRaw, ok := scenesValue.([]any)
	if !ok {
		return nil, fmt.Errorf("scenes must be an array")
	}
	if len(scenesRaw) == 0 {
		return nil, fmt.Errorf("scenes must contain at least one scene")
	}

	plan := &VideoPlan{
		Mode: ModeVideoPlan,
		Thumbnail: Thumbnail{
			Prompt:      thumbPrompt,
			Title:       stringAt(thumbObj, "title"),
			Description: stringAt(thumbObj, "description"),
		},
		Scenes: make([]Scene, 0, len(scenesRaw)),
	}

	for i, sceneValue := range scenesRaw {
		sceneObj, ok := sceneValue.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("scenes[%d] must be an object", i)
		}

		prompt := firstNonBlank(sceneObj, scenePromptSynonyms)
		if prompt == "" {
			return nil, fmt.Errorf("scenes[%d].prompt is required", i)
		}

		id := stringAt(sceneObj, "id")
		if strings.TrimSpace(id) == "" {
			id = fmt.Sprintf("scene-%d", i+1)
		}
		title := firstNonBlank(sceneObj, sceneTitleSynonyms)
		if title == "" {
			title = fmt.Sprintf("Scene %d", i+1)
		}

		plan.Scenes = append(plan.Scenes, Scene{
			ID:          id,
			Title:       title,
			Prompt:      prompt,
			Summary:     firstNonBlank(sceneObj, sceneSummarySynonyms),
			Description: firstNonBlank(sceneObj, sceneDescriptionSynonyms),
			Voiceover:   firstNonBlank(sceneObj, sceneVoiceoverSynonyms),
			Duration:    numberOf(sceneObj, sceneDurationSynonyms),
		})
	}

	return plan, nil
}

// firstNonBlank 按同义词表顺序返回第一个非空字符串字段
func firstNonBlank(obj map[string]any, synonyms []string) string {
	for _, key := range synonyms {
		if s := strings.TrimSpace(stringAt(obj, key)); s != "" {
			return s
		}
	}
	return ""
}

func stringAt(obj map[string]any, key string) string {
	if v, ok := obj[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// numberOf 按同义词表顺序返回第一个可解析的数值字段。
// 模型偶尔会把时长输出为字符串，这里也一并接受。
func numberOf(obj map[string]any, synonyms []string) float64 {
	for _, key := range synonyms {
		v, ok := obj[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f
			}
		}
	}
	return 0
}
