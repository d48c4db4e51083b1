package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModelDefinition(t *testing.T) {
	def, ok := GetModelDefinition("gemini-2.5-flash")
	require.True(t, ok)
	assert.Equal(t, ProviderGemini, def.Provider)
	assert.True(t, def.SupportsCapability(CapabilityImagePrompt))
	assert.True(t, def.SupportsCapability(CapabilityVideoPlan))

	_, ok = GetModelDefinition("gpt-3.5-turbo")
	assert.False(t, ok)
}

func TestGetCapabilityConfig(t *testing.T) {
	cfg, ok := GetCapabilityConfig("gemini-2.5-flash", CapabilityVideoPlan)
	require.True(t, ok)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.NotEmpty(t, cfg.ResponseSchema)

	// gpt-4o 只支持 videoPlan
	_, ok = GetCapabilityConfig("gpt-4o", CapabilityImagePrompt)
	assert.False(t, ok)

	_, ok = GetCapabilityConfig("unknown-model", CapabilityVideoPlan)
	assert.False(t, ok)
}

func TestListModelsForCapability_DeclarationOrder(t *testing.T) {
	models := ListModelsForCapability(CapabilityVideoPlan)
	require.Len(t, models, 4)

	var ids []string
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.5-pro", "gpt-4o-mini", "gpt-4o"}, ids)

	imageModels := ListModelsForCapability(CapabilityImagePrompt)
	require.Len(t, imageModels, 3)
	assert.Equal(t, "gemini-2.5-flash", imageModels[0].ID)
}

func TestDefaultModelForCapability(t *testing.T) {
	def, ok := DefaultModelForCapability(CapabilityVideoPlan)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.5-flash", def.ID)
}

func TestEveryCapabilityCarriesSchema(t *testing.T) {
	for _, id := range modelOrder {
		def := modelsByID[id]
		for capability, cfg := range def.Capabilities {
			assert.NotEmpty(t, cfg.ResponseMIMEType, "%s/%s missing mime type", id, capability)
			assert.NotEmpty(t, cfg.ResponseSchema, "%s/%s missing schema", id, capability)
		}
	}
}
