// Package prompt 提供提示词模板注册表
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"
)

//go:embed templates/*.txt
var templatesFS embed.FS

// PromptID 提示词模板标识
type PromptID string

// 已注册的模板。video_plan 存在两个版本：v1 的输出字段名
// （segment_title/visual_prompt 等）仍可能出现在旧部署的缓存结果里，
// 解析侧对两套字段名都兼容。
const (
	PromptVideoPlanV1   PromptID = "video_plan_v1"
	PromptVideoPlanV2   PromptID = "video_plan_v2"
	PromptImagePromptV1 PromptID = "image_prompt_v1"
	PromptLoopCycleV1   PromptID = "loop_cycle_v1"
)

// Template 一对 system/user 模板
type Template struct {
	System string
	User   string
}

// Render 渲染模板，将 {key} 占位符替换为 vars 中的值
func (t Template) Render(vars map[string]string) (system string, user string) {
	return renderText(t.System, vars), renderText(t.User, vars)
}

func renderText(text string, vars map[string]string) string {
	for key, value := range vars {
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}
	return text
}

// Registry 模板注册表，首次访问时从内嵌文件加载
type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]Template
}

// NewRegistry 创建模板注册表
func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]Template),
	}
}

// Get 获取模板
func (r *Registry) Get(id PromptID) (Template, error) {
	if r == nil {
		return Template{}, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return Template{}, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return Template{}, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return Template{}, err
	}

	tpl := Template{System: system, User: user}
	r.cache[id] = tpl
	return tpl, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptVideoPlanV1:
		return "templates/video_plan_v1.system.txt", "templates/video_plan_v1.user.txt", nil
	case PromptVideoPlanV2:
		return "templates/video_plan_v2.system.txt", "templates/video_plan_v2.user.txt", nil
	case PromptImagePromptV1:
		return "templates/image_prompt_v1.system.txt", "templates/image_prompt_v1.user.txt", nil
	case PromptLoopCycleV1:
		return "templates/loop_cycle_v1.system.txt", "templates/loop_cycle_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	data, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt template %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
