package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"vision-architect-api/internal/application/director"
	"vision-architect-api/internal/config"
	"vision-architect-api/internal/registry"
	apperrors "vision-architect-api/pkg/errors"
)

// DirectorRequest 统一调度请求，payload 按 mode 取不同形状
type DirectorRequest struct {
	Mode    string          `json:"mode"`
	Payload json.RawMessage `json:"payload"`
	APIKey  string          `json:"apiKey,omitempty"`
}

// Validate 校验请求并按 mode 解码 payload
func (r *DirectorRequest) Validate(cfg *config.Config) (*director.Request, error) {
	mode := director.Mode(strings.TrimSpace(r.Mode))
	switch mode {
	case director.ModeImagePrompt, director.ModeVideoPlan:
	case "":
		return nil, apperrors.New(apperrors.CodeInvalidParam, "mode is required")
	default:
		return nil, apperrors.New(apperrors.CodeInvalidParam, fmt.Sprintf("invalid mode: %s", r.Mode))
	}

	if len(r.Payload) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "payload is required")
	}

	clientKey := strings.TrimSpace(r.APIKey)

	if mode == director.ModeImagePrompt {
		var payload director.ImagePromptPayload
		if err := json.Unmarshal(r.Payload, &payload); err != nil {
			return nil, apperrors.New(apperrors.CodeInvalidParam, "payload must be a valid image_prompt object")
		}
		payload.VisionSeed = strings.TrimSpace(payload.VisionSeed)
		if payload.VisionSeed == "" {
			return nil, apperrors.New(apperrors.CodeInvalidParam, "visionSeed is required")
		}

		model, err := resolveModel(cfg, "", registry.CapabilityImagePrompt)
		if err != nil {
			return nil, err
		}
		return &director.Request{
			Mode:         director.ModeImagePrompt,
			Model:        model,
			ClientAPIKey: clientKey,
			ImagePrompt:  &payload,
		}, nil
	}

	var payload director.VideoPlanPayload
	if err := json.Unmarshal(r.Payload, &payload); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "payload must be a valid video_plan object")
	}
	payload.ScriptText = strings.TrimSpace(payload.ScriptText)
	payload.Tone = strings.TrimSpace(payload.Tone)
	payload.VisualStyle = strings.TrimSpace(payload.VisualStyle)
	payload.AspectRatio = strings.TrimSpace(payload.AspectRatio)
	payload.LLMModel = strings.TrimSpace(payload.LLMModel)

	model, err := validateVideoPlanPayload(cfg, &payload)
	if err != nil {
		return nil, err
	}
	return &director.Request{
		Mode:         director.ModeVideoPlan,
		Model:        model,
		ClientAPIKey: clientKey,
		VideoPlan:    &payload,
	}, nil
}
