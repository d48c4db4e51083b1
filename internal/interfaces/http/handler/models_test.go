package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vision-architect-api/internal/interfaces/http/dto"
)

func setupModelsRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.GET("/api/models", NewModelsHandler().List)
	return engine
}

func getModels(engine *gin.Engine, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/models"+query, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestModelsHandler_ListAll(t *testing.T) {
	engine := setupModelsRouter(t)

	w := getModels(engine, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ModelListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Models, 4)
	assert.Equal(t, "gemini-2.5-flash", resp.Models[0].ID)
	assert.Contains(t, resp.Models[0].Capabilities, "imagePrompt")
	assert.Contains(t, resp.Models[0].Capabilities, "videoPlan")
}

func TestModelsHandler_FilterByCapability(t *testing.T) {
	engine := setupModelsRouter(t)

	w := getModels(engine, "?capability=imagePrompt")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ModelListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Models, 3)
	for _, m := range resp.Models {
		assert.Contains(t, m.Capabilities, "imagePrompt")
	}
}

func TestModelsHandler_InvalidCapability(t *testing.T) {
	engine := setupModelsRouter(t)

	w := getModels(engine, "?capability=audio")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid capability: audio")
}
