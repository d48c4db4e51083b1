package loop

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vision-architect-api/internal/application/prompt"
	"vision-architect-api/internal/config"
	"vision-architect-api/internal/infrastructure/provider/openai"
	apperrors "vision-architect-api/pkg/errors"
)

type mockOpenAI struct {
	generateFunc func(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error)
}

func (m *mockOpenAI) GenerateJSON(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error) {
	return m.generateFunc(ctx, model, systemPrompt, userPrompt)
}

func newTestService(t *testing.T, mock *mockOpenAI) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Providers.OpenAI.Model = "gpt-4o-mini"
	return NewServiceWithResolver(cfg, prompt.NewRegistry(),
		func(clientKey string) OpenAIGenerator { return mock })
}

const validCycleJSON = `{
	"cycle": 2,
	"storyBeat": {
		"subjectIdentity": "a rust-red fox",
		"lightingPalette": "cool moonlight with amber accents",
		"cameraGrammar": "slow lateral dolly, 35mm",
		"environmentMotif": "snowy birch forest",
		"beat": "the fox pauses at a frozen stream",
		"prompt": "a rust-red fox pausing at a frozen stream under cool moonlight"
	},
	"endFrame": {"prompt": "the fox looking back over its shoulder", "description": "hands off to the next cycle"},
	"autopilotDirective": "follow the fox deeper into the forest"
}`

func TestGenerate_EmbedsHistoryAndContinuity(t *testing.T) {
	previous := LoopCycle{
		Cycle: 1,
		StoryBeat: StoryBeat{
			SubjectIdentity:  "a rust-red fox",
			LightingPalette:  "cool moonlight with amber accents",
			CameraGrammar:    "slow lateral dolly, 35mm",
			EnvironmentMotif: "snowy birch forest",
			Beat:             "the fox enters the treeline",
			Prompt:           "a rust-red fox entering a snowy birch forest",
		},
		EndFrame:           EndFrame{Prompt: "the fox at the treeline"},
		AutopilotDirective: "move toward the stream",
	}

	mock := &mockOpenAI{
		generateFunc: func(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error) {
			assert.Equal(t, "gpt-4o-mini", model)
			assert.Contains(t, systemPrompt, "continuity lock")
			assert.Contains(t, userPrompt, "a rust-red fox entering a snowy birch forest")
			assert.Contains(t, userPrompt, "Produce cycle 2")
			assert.Contains(t, userPrompt, "Predictive mode: true")
			return validCycleJSON, nil, nil
		},
	}
	svc := newTestService(t, mock)

	cycle, err := svc.Generate(context.Background(), &Request{
		VisionSeed:     "an endless winter forest loop",
		PreviousCycles: []LoopCycle{previous},
		PredictiveMode: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, cycle.Cycle)
	assert.Equal(t, "a rust-red fox", cycle.StoryBeat.SubjectIdentity)
	assert.NotEmpty(t, cycle.EndFrame.Prompt)
}

func TestGenerate_FirstCycleWithoutHistory(t *testing.T) {
	mock := &mockOpenAI{
		generateFunc: func(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error) {
			assert.Contains(t, userPrompt, "(first cycle, no history)")
			assert.Contains(t, userPrompt, "Produce cycle 1")
			// cycle 缺省时由服务端补号
			return `{
				"storyBeat": {"subjectIdentity": "a fox", "prompt": "a fox in the snow"},
				"endFrame": {"prompt": "the fox at rest"},
				"autopilotDirective": "keep going"
			}`, nil, nil
		},
	}
	svc := newTestService(t, mock)

	cycle, err := svc.Generate(context.Background(), &Request{VisionSeed: "winter loop"})
	require.NoError(t, err)
	assert.Equal(t, 1, cycle.Cycle)
}

func TestGenerate_ParseFailureReturnsGenericError(t *testing.T) {
	mock := &mockOpenAI{
		generateFunc: func(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error) {
			return `{"storyBeat": {"subjectIdentity": "a fox"}}`, nil, nil
		},
	}
	svc := newTestService(t, mock)

	_, err := svc.Generate(context.Background(), &Request{VisionSeed: "winter loop"})
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeGenerationFailed, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}

func TestGenerate_ConfigurationError(t *testing.T) {
	mock := &mockOpenAI{
		generateFunc: func(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error) {
			return "", nil, &openai.ConfigurationError{Message: "openai api key is not configured"}
		},
	}
	svc := newTestService(t, mock)

	_, err := svc.Generate(context.Background(), &Request{VisionSeed: "winter loop"})
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeProviderNotConfigured, appErr.Code)
	assert.Equal(t, "provider not configured", appErr.Message)
}

func TestGenerate_UpstreamStatusPassthrough(t *testing.T) {
	mock := &mockOpenAI{
		generateFunc: func(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error) {
			return "", nil, &openai.APIError{Status: http.StatusTooManyRequests, Message: "rate limited"}
		},
	}
	svc := newTestService(t, mock)

	_, err := svc.Generate(context.Background(), &Request{VisionSeed: "winter loop"})
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, apperrors.AsAppError(err).HTTPStatus)
}
