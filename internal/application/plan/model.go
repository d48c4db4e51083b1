// Package plan 提供视频分镜计划的生成与规范化
package plan

// Thumbnail 封面帧定义
type Thumbnail struct {
	Prompt      string `json:"prompt"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Scene 单个分镜
type Scene struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Prompt      string  `json:"prompt"`
	Summary     string  `json:"summary,omitempty"`
	Description string  `json:"description,omitempty"`
	Voiceover   string  `json:"voiceover,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
}

// VideoPlan 规范化后的视频分镜计划
// 不变式：至少一个分镜；每个分镜与封面都带有非空 prompt。
type VideoPlan struct {
	Mode      string    `json:"mode"`
	Thumbnail Thumbnail `json:"thumbnail"`
	Scenes    []Scene   `json:"scenes"`
}

// ModeVideoPlan VideoPlan.Mode 的唯一合法取值
const ModeVideoPlan = "video_plan"
