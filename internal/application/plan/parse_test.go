package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_CanonicalFields(t *testing.T) {
	raw := `{
		"mode": "video_plan",
		"thumbnail": {"prompt": "a neon city skyline", "title": "Neon Nights"},
		"scenes": [
			{"id": "intro", "title": "Opening", "prompt": "wide shot of the city", "description": "establishing shot", "voiceover": "The city never sleeps.", "duration": 5}
		]
	}`

	result, _, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, ModeVideoPlan, result.Mode)
	assert.Equal(t, "a neon city skyline", result.Thumbnail.Prompt)
	assert.Equal(t, "Neon Nights", result.Thumbnail.Title)
	require.Len(t, result.Scenes, 1)
	assert.Equal(t, "intro", result.Scenes[0].ID)
	assert.Equal(t, "Opening", result.Scenes[0].Title)
	assert.Equal(t, "wide shot of the city", result.Scenes[0].Prompt)
	assert.Equal(t, "The city never sleeps.", result.Scenes[0].Voiceover)
	assert.Equal(t, 5.0, result.Scenes[0].Duration)
}

func TestParse_LegacyFieldNames(t *testing.T) {
	// 旧版模板的字段名必须能解析出与新版相同的结果
	legacy := `{
		"mode": "video_plan",
		"thumbnail": {"prompt": "a neon city skyline"},
		"scenes": [
			{"segment_title": "Opening", "visual_prompt": "wide shot of the city", "scene_description": "establishing shot", "voice_over": "The city never sleeps.", "length": 5, "synopsis": "the city at night"}
		]
	}`
	canonical := `{
		"mode": "video_plan",
		"thumbnail": {"prompt": "a neon city skyline"},
		"scenes": [
			{"title": "Opening", "prompt": "wide shot of the city", "description": "establishing shot", "voiceover": "The city never sleeps.", "duration": 5, "summary": "the city at night"}
		]
	}`

	fromLegacy, _, err := Parse(legacy)
	require.NoError(t, err)
	fromCanonical, _, err := Parse(canonical)
	require.NoError(t, err)

	assert.Equal(t, fromCanonical, fromLegacy)
}

func TestParse_CanonicalNameWinsOverSynonym(t *testing.T) {
	raw := `{
		"mode": "video_plan",
		"thumbnail": {"prompt": "p"},
		"scenes": [{"prompt": "new prompt", "visual_prompt": "old prompt"}]
	}`

	result, _, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "new prompt", result.Scenes[0].Prompt)
}

func TestParse_ExtractsJSONFromSurroundingText(t *testing.T) {
	raw := "Here is your plan:\n```json\n" +
		`{"mode": "video_plan", "thumbnail": {"prompt": "p"}, "scenes": [{"prompt": "s"}]}` +
		"\n```\nEnjoy!"

	result, _, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, result.Scenes, 1)
}

func TestParse_SceneFallbacks(t *testing.T) {
	raw := `{
		"mode": "video_plan",
		"thumbnail": {"prompt": "p"},
		"scenes": [{"prompt": "first"}, {"prompt": "second"}]
	}`

	result, _, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "scene-1", result.Scenes[0].ID)
	assert.Equal(t, "Scene 1", result.Scenes[0].Title)
	assert.Equal(t, "scene-2", result.Scenes[1].ID)
	assert.Equal(t, "Scene 2", result.Scenes[1].Title)
}

func TestParse_DurationAsString(t *testing.T) {
	raw := `{
		"mode": "video_plan",
		"thumbnail": {"prompt": "p"},
		"scenes": [{"prompt": "s", "duration": "7.5"}]
	}`

	result, _, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 7.5, result.Scenes[0].Duration)
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name:    "not an object",
			raw:     `[1, 2, 3]`,
			wantErr: "must be a JSON object",
		},
		{
			name:    "wrong mode",
			raw:     `{"mode": "image_prompt", "thumbnail": {"prompt": "p"}, "scenes": [{"prompt": "s"}]}`,
			wantErr: "mode",
		},
		{
			name:    "missing thumbnail",
			raw:     `{"mode": "video_plan", "scenes": [{"prompt": "s"}]}`,
			wantErr: "thumbnail is required",
		},
		{
			name:    "thumbnail not an object",
			raw:     `{"mode": "video_plan", "thumbnail": "p", "scenes": [{"prompt": "s"}]}`,
			wantErr: "thumbnail must be an object",
		},
		{
			name:    "blank thumbnail prompt",
			raw:     `{"mode": "video_plan", "thumbnail": {"prompt": "  "}, "scenes": [{"prompt": "s"}]}`,
			wantErr: "thumbnail.prompt is required",
		},
		{
			name:    "missing scenes",
			raw:     `{"mode": "video_plan", "thumbnail": {"prompt": "p"}}`,
			wantErr: "at least one scene",
		},
		{
			name:    "empty scenes",
			raw:     `{"mode": "video_plan", "thumbnail": {"prompt": "p"}, "scenes": []}`,
			wantErr: "at least one scene",
		},
		{
			name:    "scenes not an array",
			raw:     `{"mode": "video_plan", "thumbnail": {"prompt": "p"}, "scenes": {"prompt": "s"}}`,
			wantErr: "scenes must be an array",
		},
		{
			name:    "scene without prompt",
			raw:     `{"mode": "video_plan", "thumbnail": {"prompt": "p"}, "scenes": [{"prompt": "ok"}, {"title": "no prompt"}]}`,
			wantErr: "scenes[1].prompt is required",
		},
		{
			name:    "empty output",
			raw:     "   ",
			wantErr: "empty video plan output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOptionSets(t *testing.T) {
	assert.True(t, IsValidTone("cinematic"))
	assert.False(t, IsValidTone("sarcastic"))
	assert.True(t, IsValidVisualStyle("retro_film"))
	assert.False(t, IsValidVisualStyle("cubist"))
	assert.True(t, IsValidAspectRatio("9:16"))
	assert.False(t, IsValidAspectRatio("21:9"))
}
