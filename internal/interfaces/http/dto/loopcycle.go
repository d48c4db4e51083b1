package dto

import (
	"strings"

	"vision-architect-api/internal/application/loop"
	apperrors "vision-architect-api/pkg/errors"
)

// LoopCycleRequest 循环周期生成请求
type LoopCycleRequest struct {
	VisionSeed            string           `json:"visionSeed"`
	InspirationReferences []string         `json:"inspirationReferences,omitempty"`
	StartFrames           []string         `json:"startFrames,omitempty"`
	PreviousCycles        []loop.LoopCycle `json:"previousCycles,omitempty"`
	PredictiveMode        bool             `json:"predictiveMode"`
	APIKey                string           `json:"apiKey,omitempty"`
}

// Validate 校验请求
func (r *LoopCycleRequest) Validate() (*loop.Request, error) {
	visionSeed := strings.TrimSpace(r.VisionSeed)
	if visionSeed == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "visionSeed is required")
	}

	return &loop.Request{
		VisionSeed:            visionSeed,
		InspirationReferences: r.InspirationReferences,
		StartFrames:           r.StartFrames,
		PreviousCycles:        r.PreviousCycles,
		PredictiveMode:        r.PredictiveMode,
		ClientAPIKey:          strings.TrimSpace(r.APIKey),
	}, nil
}
