package plan

import (
	"vision-architect-api/internal/application/prompt"
)

// PromptInput 视频规划提示词的输入
type PromptInput struct {
	ScriptText  string
	Tone        string
	VisualStyle string
	AspectRatio string
}

// BuildPrompts 渲染视频规划的 system/user 提示词
func BuildPrompts(registry *prompt.Registry, input PromptInput) (system string, user string, err error) {
	tpl, err := registry.Get(prompt.PromptVideoPlanV2)
	if err != nil {
		return "", "", err
	}
	system, user = tpl.Render(map[string]string{
		"script":       input.ScriptText,
		"tone":         input.Tone,
		"visual_style": input.VisualStyle,
		"aspect_ratio": input.AspectRatio,
	})
	return system, user, nil
}
