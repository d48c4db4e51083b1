package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vision-architect-api/internal/application/loop"
	"vision-architect-api/internal/application/prompt"
	"vision-architect-api/internal/config"
	"vision-architect-api/internal/infrastructure/provider/openai"
)

func setupLoopRouter(t *testing.T, mock *mockOpenAI) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Providers.OpenAI.Model = "gpt-4o-mini"
	svc := loop.NewServiceWithResolver(cfg, prompt.NewRegistry(),
		func(clientKey string) loop.OpenAIGenerator { return mock })

	engine := gin.New()
	h := NewLoopCycleHandler(cfg, svc)
	engine.POST("/api/generate-loop-cycle", h.Generate)
	return engine
}

func TestLoopCycleHandler_Success(t *testing.T) {
	mock := &mockOpenAI{
		generateFunc: func(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error) {
			assert.Contains(t, userPrompt, "an endless aquarium loop")
			return `{
				"cycle": 1,
				"storyBeat": {"subjectIdentity": "a jellyfish", "lightingPalette": "deep blue", "cameraGrammar": "static wide", "environmentMotif": "kelp forest", "beat": "drifting upward", "prompt": "a jellyfish drifting upward through a kelp forest"},
				"endFrame": {"prompt": "the jellyfish near the surface"},
				"autopilotDirective": "descend again"
			}`, nil, nil
		},
	}
	engine := setupLoopRouter(t, mock)

	w := postJSON(engine, "/api/generate-loop-cycle", `{
		"visionSeed": "an endless aquarium loop",
		"predictiveMode": false
	}`, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var cycle loop.LoopCycle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cycle))
	assert.Equal(t, 1, cycle.Cycle)
	assert.Equal(t, "a jellyfish", cycle.StoryBeat.SubjectIdentity)
	assert.Equal(t, "descend again", cycle.AutopilotDirective)
}

func TestLoopCycleHandler_MissingVisionSeed(t *testing.T) {
	mock := &mockOpenAI{}
	engine := setupLoopRouter(t, mock)

	w := postJSON(engine, "/api/generate-loop-cycle", `{"predictiveMode": true}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, mock.calls)
	assert.Contains(t, w.Body.String(), "visionSeed is required")
}

func TestLoopCycleHandler_NotConfiguredIs500(t *testing.T) {
	// generateFunc 为空时 mock 返回配置错误
	mock := &mockOpenAI{}
	engine := setupLoopRouter(t, mock)

	w := postJSON(engine, "/api/generate-loop-cycle", `{"visionSeed": "loop"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "provider not configured")
}
