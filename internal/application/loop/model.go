// Package loop 实现无尽循环视频的逐周期生成。
// 连续性状态不在服务端持久化，由客户端把历史周期随请求带回。
package loop

// StoryBeat 单个周期的故事节拍。
// SubjectIdentity/LightingPalette/CameraGrammar/EnvironmentMotif 构成
// 连续性锁，周期之间必须保持一致，只有 Beat 允许演进。
type StoryBeat struct {
	SubjectIdentity  string `json:"subjectIdentity"`
	LightingPalette  string `json:"lightingPalette"`
	CameraGrammar    string `json:"cameraGrammar"`
	EnvironmentMotif string `json:"environmentMotif"`
	Beat             string `json:"beat"`
	Prompt           string `json:"prompt"`
}

// EndFrame 周期收尾帧，负责与下一周期衔接
type EndFrame struct {
	Prompt      string `json:"prompt"`
	Description string `json:"description,omitempty"`
}

// LoopCycle 一个完整的循环周期
type LoopCycle struct {
	Cycle              int       `json:"cycle"`
	StoryBeat          StoryBeat `json:"storyBeat"`
	EndFrame           EndFrame  `json:"endFrame"`
	AutopilotDirective string    `json:"autopilotDirective"`
}

// Request 生成下一周期的请求
type Request struct {
	VisionSeed            string
	InspirationReferences []string
	StartFrames           []string
	PreviousCycles        []LoopCycle
	PredictiveMode        bool
	ClientAPIKey          string
}
