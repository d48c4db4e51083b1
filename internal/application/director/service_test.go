package director

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vision-architect-api/internal/application/prompt"
	"vision-architect-api/internal/config"
	"vision-architect-api/internal/infrastructure/provider/gemini"
	"vision-architect-api/internal/infrastructure/provider/openai"
	"vision-architect-api/internal/registry"
	apperrors "vision-architect-api/pkg/errors"
)

type mockGemini struct {
	generateFunc func(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error)
	calls        int
}

func (m *mockGemini) GenerateText(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error) {
	m.calls++
	return m.generateFunc(ctx, model, req)
}

type mockOpenAI struct {
	generateFunc func(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error)
	calls        int
}

func (m *mockOpenAI) GenerateJSON(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error) {
	m.calls++
	return m.generateFunc(ctx, model, systemPrompt, userPrompt)
}

func newTestService(t *testing.T, cfg *config.Config, geminiMock *mockGemini, openaiMock *mockOpenAI) *Service {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	return NewServiceWithResolvers(cfg, prompt.NewRegistry(),
		func(clientKey string) GeminiGenerator { return geminiMock },
		func(clientKey string) OpenAIGenerator { return openaiMock },
	)
}

func videoPlanRequest(modelID string) *Request {
	model, _ := registry.GetModelDefinition(modelID)
	return &Request{
		Mode:  ModeVideoPlan,
		Model: model,
		VideoPlan: &VideoPlanPayload{
			ScriptText:  "a day in the life of a lighthouse keeper",
			Tone:        "cinematic",
			VisualStyle: "photorealistic",
			AspectRatio: "16:9",
		},
	}
}

const validPlanJSON = `{
	"mode": "video_plan",
	"thumbnail": {"prompt": "lighthouse at dawn"},
	"scenes": [{"prompt": "waves crashing on the rocks", "duration": 4}]
}`

func TestDispatch_VideoPlanViaGemini(t *testing.T) {
	geminiMock := &mockGemini{
		generateFunc: func(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error) {
			assert.Equal(t, "gemini-2.5-flash", model)
			require.NotNil(t, req.SystemInstruction)
			assert.Contains(t, req.SystemInstruction.Parts[0].Text, "video plan")
			require.Len(t, req.Contents, 1)
			assert.Contains(t, req.Contents[0].Parts[0].Text, "lighthouse keeper")
			assert.Contains(t, req.Contents[0].Parts[0].Text, "cinematic")
			require.NotNil(t, req.GenerationConfig)
			assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)
			assert.NotEmpty(t, req.GenerationConfig.ResponseSchema)
			return validPlanJSON, nil
		},
	}
	svc := newTestService(t, nil, geminiMock, &mockOpenAI{})

	result, err := svc.Dispatch(context.Background(), videoPlanRequest("gemini-2.5-flash"))
	require.NoError(t, err)

	assert.Equal(t, ModeVideoPlan, result.Mode)
	assert.Equal(t, registry.ProviderGemini, result.Provider)
	require.NotNil(t, result.Plan)
	assert.Len(t, result.Plan.Scenes, 1)
	assert.Equal(t, 1, geminiMock.calls)
}

func TestDispatch_VideoPlanViaOpenAI(t *testing.T) {
	openaiMock := &mockOpenAI{
		generateFunc: func(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error) {
			assert.Equal(t, "gpt-4o", model)
			return validPlanJSON, &openai.Usage{PromptTokens: 100, CompletionTokens: 200}, nil
		},
	}
	svc := newTestService(t, nil, &mockGemini{}, openaiMock)

	result, err := svc.Dispatch(context.Background(), videoPlanRequest("gpt-4o"))
	require.NoError(t, err)
	assert.Equal(t, registry.ProviderOpenAI, result.Provider)
	assert.Equal(t, 1, openaiMock.calls)
}

func TestDispatch_EmptyProviderOutput(t *testing.T) {
	geminiMock := &mockGemini{
		generateFunc: func(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error) {
			return "   ", nil
		},
	}
	svc := newTestService(t, nil, geminiMock, &mockOpenAI{})

	_, err := svc.Dispatch(context.Background(), videoPlanRequest("gemini-2.5-flash"))
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeProviderBadResponse, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
}

func TestDispatch_InvalidPlanFormat(t *testing.T) {
	geminiMock := &mockGemini{
		generateFunc: func(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error) {
			return `{"mode": "video_plan", "thumbnail": {"prompt": "p"}, "scenes": []}`, nil
		},
	}
	svc := newTestService(t, nil, geminiMock, &mockOpenAI{})

	_, err := svc.Dispatch(context.Background(), videoPlanRequest("gemini-2.5-flash"))
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeProviderBadResponse, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
	// 诊断详情带上原始片段
	assert.Contains(t, appErr.Detail, "scenes")
}

func TestDispatch_UpstreamStatusPassthrough(t *testing.T) {
	geminiMock := &mockGemini{
		generateFunc: func(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error) {
			return "", &gemini.APIError{Status: http.StatusTooManyRequests, Message: "quota exceeded"}
		},
	}
	svc := newTestService(t, nil, geminiMock, &mockOpenAI{})

	_, err := svc.Dispatch(context.Background(), videoPlanRequest("gemini-2.5-flash"))
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, http.StatusTooManyRequests, appErr.HTTPStatus)
	assert.Equal(t, "quota exceeded", appErr.Message)
}

func TestDispatch_ConfigurationErrorNeverLeaksDetails(t *testing.T) {
	geminiMock := &mockGemini{
		generateFunc: func(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error) {
			return "", &gemini.ConfigurationError{Message: "gemini api key is not configured"}
		},
	}
	svc := newTestService(t, nil, geminiMock, &mockOpenAI{})

	_, err := svc.Dispatch(context.Background(), videoPlanRequest("gemini-2.5-flash"))
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	assert.Equal(t, "provider not configured", appErr.Message)
	assert.NotContains(t, appErr.Detail, "key")
}

func TestDispatch_RequireClientKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Director.RequireClientKey = true

	geminiMock := &mockGemini{
		generateFunc: func(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error) {
			return validPlanJSON, nil
		},
	}
	svc := newTestService(t, cfg, geminiMock, &mockOpenAI{})

	_, err := svc.Dispatch(context.Background(), videoPlanRequest("gemini-2.5-flash"))
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, 0, geminiMock.calls)

	// 带上 Key 后放行
	req := videoPlanRequest("gemini-2.5-flash")
	req.ClientAPIKey = "caller-key"
	_, err = svc.Dispatch(context.Background(), req)
	require.NoError(t, err)
}

func TestDispatch_ImagePrompt(t *testing.T) {
	geminiMock := &mockGemini{
		generateFunc: func(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error) {
			userText := req.Contents[0].Parts[0].Text
			assert.Contains(t, userText, "a lone astronaut")
			assert.Contains(t, userText, "Golden Hour [lighting]: warm golden backlight")
			assert.Contains(t, userText, "- unknown-option")
			return `{"prompt": "a lone astronaut bathed in warm golden backlight", "notes": "soft and hopeful"}`, nil
		},
	}
	svc := newTestService(t, nil, geminiMock, &mockOpenAI{})

	model, _ := registry.GetModelDefinition("gemini-2.5-flash")
	result, err := svc.Dispatch(context.Background(), &Request{
		Mode:  ModeImagePrompt,
		Model: model,
		ImagePrompt: &ImagePromptPayload{
			VisionSeed:      "a lone astronaut",
			SelectedOptions: []string{"golden-hour", "unknown-option"},
			Glossary: map[string]GlossaryEntry{
				"golden-hour": {Label: "Golden Hour", Category: "lighting", PromptFragment: "warm golden backlight"},
			},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, result.ImagePrompt)
	assert.Equal(t, "a lone astronaut bathed in warm golden backlight", result.ImagePrompt.PromptText)
	assert.Equal(t, "soft and hopeful", result.ImagePrompt.Metadata["notes"])
	assert.Equal(t, "gemini-2.5-flash", result.ImagePrompt.Metadata["model"])
	assert.NotNil(t, result.ImagePrompt.Images)
}

// 响应严格按 ImagePromptSchema 声明的字段构造时必须能解析成功
func TestDispatch_ImagePromptSchemaConformantResponse(t *testing.T) {
	props := registry.ImagePromptSchema["properties"].(map[string]any)
	payload := make(map[string]any, len(props))
	for name := range props {
		payload[name] = "value for " + name
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	geminiMock := &mockGemini{
		generateFunc: func(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error) {
			require.NotNil(t, req.GenerationConfig)
			assert.Equal(t, registry.ImagePromptSchema, req.GenerationConfig.ResponseSchema)
			return string(raw), nil
		},
	}
	svc := newTestService(t, nil, geminiMock, &mockOpenAI{})

	model, _ := registry.GetModelDefinition("gemini-2.5-flash")
	result, err := svc.Dispatch(context.Background(), &Request{
		Mode:  ModeImagePrompt,
		Model: model,
		ImagePrompt: &ImagePromptPayload{
			VisionSeed: "a lone astronaut",
		},
	})
	require.NoError(t, err)

	require.NotNil(t, result.ImagePrompt)
	assert.Equal(t, "value for prompt", result.ImagePrompt.PromptText)
	assert.Equal(t, "value for negativePrompt", result.ImagePrompt.Metadata["negativePrompt"])
	assert.Equal(t, "value for notes", result.ImagePrompt.Metadata["notes"])
	assert.Equal(t, []string{"prompt"}, registry.ImagePromptSchema["required"])
}

func TestDispatch_ImagePromptMissingPromptField(t *testing.T) {
	geminiMock := &mockGemini{
		generateFunc: func(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error) {
			return `{"notes": "no prompt here"}`, nil
		},
	}
	svc := newTestService(t, nil, geminiMock, &mockOpenAI{})

	model, _ := registry.GetModelDefinition("gemini-2.5-flash")
	_, err := svc.Dispatch(context.Background(), &Request{
		Mode:        ModeImagePrompt,
		Model:       model,
		ImagePrompt: &ImagePromptPayload{VisionSeed: "seed"},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeProviderBadResponse, apperrors.AsAppError(err).Code)
}
