package director

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vision-architect-api/internal/application/genutil"
	"vision-architect-api/internal/application/plan"
	"vision-architect-api/internal/application/prompt"
	"vision-architect-api/internal/config"
	"vision-architect-api/internal/infrastructure/provider/gemini"
	"vision-architect-api/internal/infrastructure/provider/openai"
	"vision-architect-api/internal/registry"
	apperrors "vision-architect-api/pkg/errors"
	"vision-architect-api/pkg/logger"
	"vision-architect-api/pkg/metrics"
)

// GeminiGenerator Gemini 文本生成接口
type GeminiGenerator interface {
	GenerateText(ctx context.Context, model string, req *gemini.GenerateContentRequest) (string, error)
}

// OpenAIGenerator OpenAI JSON 生成接口
type OpenAIGenerator interface {
	GenerateJSON(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error)
}

// GeminiResolver 按调用方 Key 解析 Gemini 客户端（空 Key 使用服务端配置）
type GeminiResolver func(clientKey string) GeminiGenerator

// OpenAIResolver 按调用方 Key 解析 OpenAI 客户端
type OpenAIResolver func(clientKey string) OpenAIGenerator

// Service 调度服务
type Service struct {
	cfg     *config.Config
	prompts *prompt.Registry
	gemini  GeminiResolver
	openai  OpenAIResolver
}

// NewService 创建调度服务
func NewService(cfg *config.Config, prompts *prompt.Registry, geminiClient *gemini.Client, openaiClient *openai.Client) *Service {
	return &Service{
		cfg:     cfg,
		prompts: prompts,
		gemini: func(clientKey string) GeminiGenerator {
			return geminiClient.WithAPIKey(clientKey)
		},
		openai: func(clientKey string) OpenAIGenerator {
			return openaiClient.WithAPIKey(clientKey)
		},
	}
}

// NewServiceWithResolvers 以自定义客户端解析器创建调度服务（测试用）
func NewServiceWithResolvers(cfg *config.Config, prompts *prompt.Registry, geminiResolver GeminiResolver, openaiResolver OpenAIResolver) *Service {
	return &Service{
		cfg:     cfg,
		prompts: prompts,
		gemini:  geminiResolver,
		openai:  openaiResolver,
	}
}

// Dispatch 执行一次调度：构建提示词、调用提供商、整形响应。
// 每个请求恰好发起一次提供商调用，失败不重试。
func (s *Service) Dispatch(ctx context.Context, req *Request) (*Result, error) {
	if s.cfg.Director.RequireClientKey && strings.TrimSpace(req.ClientAPIKey) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "api key is required")
	}

	start := time.Now()
	result, err := s.dispatch(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.GenerationTotal.WithLabelValues(string(req.Mode), status).Inc()
	metrics.GenerationDuration.WithLabelValues(string(req.Mode)).Observe(time.Since(start).Seconds())

	return result, err
}

func (s *Service) dispatch(ctx context.Context, req *Request) (*Result, error) {
	systemPrompt, userPrompt, err := s.buildPrompts(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to build prompts")
	}

	rawText, err := s.callProvider(ctx, req, systemPrompt, userPrompt)
	if err != nil {
		return nil, mapProviderError(ctx, req, err)
	}
	if strings.TrimSpace(rawText) == "" {
		logger.Warn(ctx, "provider returned empty output",
			"provider", string(req.Model.Provider), "model", req.Model.ID)
		return nil, apperrors.New(apperrors.CodeProviderBadResponse, "provider returned an empty response")
	}

	result := &Result{
		Mode:     req.Mode,
		Provider: req.Model.Provider,
	}

	switch req.Mode {
	case ModeVideoPlan:
		videoPlan, jsonText, err := plan.Parse(rawText)
		if err != nil {
			logger.Error(ctx, "failed to normalize video plan", err,
				"model", req.Model.ID, "raw", excerpt(jsonText))
			return nil, apperrors.New(apperrors.CodeProviderBadResponse,
				"provider returned an invalid video plan format").WithDetail(excerpt(jsonText))
		}
		metrics.PlanSceneCount.WithLabelValues(req.Model.ID).Observe(float64(len(videoPlan.Scenes)))
		result.Plan = videoPlan

	case ModeImagePrompt:
		imageResult, err := parseImagePrompt(rawText)
		if err != nil {
			logger.Error(ctx, "failed to normalize image prompt", err,
				"model", req.Model.ID, "raw", excerpt(rawText))
			return nil, apperrors.New(apperrors.CodeProviderBadResponse,
				"provider returned an invalid prompt format").WithDetail(excerpt(rawText))
		}
		imageResult.Metadata["model"] = req.Model.ID
		result.ImagePrompt = imageResult

	default:
		return nil, apperrors.New(apperrors.CodeInvalidParam, fmt.Sprintf("unsupported mode: %s", req.Mode))
	}

	return result, nil
}

// buildPrompts 按模式渲染 system/user 提示词
func (s *Service) buildPrompts(req *Request) (string, string, error) {
	switch req.Mode {
	case ModeVideoPlan:
		return plan.BuildPrompts(s.prompts, plan.PromptInput{
			ScriptText:  req.VideoPlan.ScriptText,
			Tone:        req.VideoPlan.Tone,
			VisualStyle: req.VideoPlan.VisualStyle,
			AspectRatio: req.VideoPlan.AspectRatio,
		})
	case ModeImagePrompt:
		tpl, err := s.prompts.Get(prompt.PromptImagePromptV1)
		if err != nil {
			return "", "", err
		}
		system, user := tpl.Render(map[string]string{
			"vision_seed": req.ImagePrompt.VisionSeed,
			"fragments":   renderFragments(req.ImagePrompt),
		})
		return system, user, nil
	default:
		return "", "", fmt.Errorf("unsupported mode: %s", req.Mode)
	}
}

// renderFragments 将选中的词条解析为提示词片段列表。
// 词表里查不到的选项按原文保留，避免静默丢弃用户意图。
func renderFragments(payload *ImagePromptPayload) string {
	if len(payload.SelectedOptions) == 0 {
		return "(none)"
	}
	var lines []string
	for _, option := range payload.SelectedOptions {
		if entry, ok := payload.Glossary[option]; ok {
			lines = append(lines, fmt.Sprintf("- %s [%s]: %s", entry.Label, entry.Category, entry.PromptFragment))
			continue
		}
		lines = append(lines, "- "+option)
	}
	return strings.Join(lines, "\n")
}

// callProvider 按提供商分支调用，记录调用指标
func (s *Service) callProvider(ctx context.Context, req *Request, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	var rawText string
	var err error

	switch req.Model.Provider {
	case registry.ProviderGemini:
		rawText, err = s.callGemini(ctx, req, systemPrompt, userPrompt)
	case registry.ProviderOpenAI:
		rawText, err = s.callOpenAI(ctx, req, systemPrompt, userPrompt)
	default:
		return "", apperrors.New(apperrors.CodeInternalError,
			fmt.Sprintf("unknown provider: %s", req.Model.Provider))
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ProviderCallTotal.WithLabelValues(string(req.Model.Provider), req.Model.ID, status).Inc()
	metrics.ProviderCallDuration.WithLabelValues(string(req.Model.Provider), req.Model.ID).
		Observe(time.Since(start).Seconds())

	return rawText, err
}

func (s *Service) callGemini(ctx context.Context, req *Request, systemPrompt, userPrompt string) (string, error) {
	generationConfig := &gemini.GenerationConfig{
		ResponseMIMEType: "application/json",
	}
	if capCfg, ok := req.Model.Capabilities[capabilityForMode(req.Mode)]; ok {
		generationConfig.ResponseMIMEType = capCfg.ResponseMIMEType
		generationConfig.ResponseSchema = capCfg.ResponseSchema
	} else if req.Mode == ModeVideoPlan {
		// 注册表缺失能力配置时退回内置 schema
		generationConfig.ResponseSchema = registry.VideoPlanSchema
	}

	client := s.gemini(req.ClientAPIKey)
	return client.GenerateText(ctx, req.Model.ID, &gemini.GenerateContentRequest{
		Contents: []gemini.Content{
			{Role: "user", Parts: []gemini.Part{{Text: userPrompt}}},
		},
		SystemInstruction: &gemini.Content{
			Parts: []gemini.Part{{Text: systemPrompt}},
		},
		GenerationConfig: generationConfig,
	})
}

func (s *Service) callOpenAI(ctx context.Context, req *Request, systemPrompt, userPrompt string) (string, error) {
	client := s.openai(req.ClientAPIKey)
	rawText, usage, err := client.GenerateJSON(ctx, req.Model.ID, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	if usage != nil {
		metrics.ProviderTokensUsed.WithLabelValues("openai", req.Model.ID, "prompt").
			Add(float64(usage.PromptTokens))
		metrics.ProviderTokensUsed.WithLabelValues("openai", req.Model.ID, "completion").
			Add(float64(usage.CompletionTokens))
	}
	return rawText, nil
}

func capabilityForMode(mode Mode) registry.Capability {
	if mode == ModeImagePrompt {
		return registry.CapabilityImagePrompt
	}
	return registry.CapabilityVideoPlan
}

// mapProviderError 将提供商错误映射为应用错误。
// 配置错误一律返回通用 500，绝不把 Key 相关细节透给调用方；
// 上游 API 错误原样透传状态码（如 429）。
func mapProviderError(ctx context.Context, req *Request, err error) *apperrors.AppError {
	var geminiConfigErr *gemini.ConfigurationError
	var openaiConfigErr *openai.ConfigurationError
	if errors.As(err, &geminiConfigErr) || errors.As(err, &openaiConfigErr) {
		logger.Error(ctx, "provider is not configured", err,
			"provider", string(req.Model.Provider), "model", req.Model.ID)
		return apperrors.New(apperrors.CodeProviderNotConfigured, "provider not configured")
	}

	var geminiAPIErr *gemini.APIError
	if errors.As(err, &geminiAPIErr) {
		logger.Warn(ctx, "gemini api error",
			"status", strconv.Itoa(geminiAPIErr.Status), "message", geminiAPIErr.Message)
		return apperrors.New(apperrors.CodeProviderError, geminiAPIErr.Message).
			WithStatus(geminiAPIErr.Status).
			WithDetail(geminiAPIErr.Details)
	}

	var openaiAPIErr *openai.APIError
	if errors.As(err, &openaiAPIErr) {
		logger.Warn(ctx, "openai api error",
			"status", strconv.Itoa(openaiAPIErr.Status), "message", openaiAPIErr.Message)
		return apperrors.New(apperrors.CodeProviderError, openaiAPIErr.Message).
			WithStatus(openaiAPIErr.Status)
	}

	logger.Error(ctx, "provider call failed", err,
		"provider", string(req.Model.Provider), "model", req.Model.ID)
	return apperrors.Wrap(err, apperrors.CodeGenerationFailed, "generation failed")
}

// parseImagePrompt 从模型原始输出解析精修后的图像提示词
func parseImagePrompt(rawText string) (*ImagePromptResult, error) {
	jsonText := genutil.ExtractJSONObject(rawText)

	var payload struct {
		Prompt         string `json:"prompt"`
		NegativePrompt string `json:"negativePrompt"`
		Notes          string `json:"notes"`
	}
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse image prompt json: %w", err)
	}
	if strings.TrimSpace(payload.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	metadata := make(map[string]string)
	if payload.NegativePrompt != "" {
		metadata["negativePrompt"] = payload.NegativePrompt
	}
	if payload.Notes != "" {
		metadata["notes"] = payload.Notes
	}
	return &ImagePromptResult{
		PromptText: payload.Prompt,
		Images:     []string{},
		Metadata:   metadata,
	}, nil
}

func excerpt(s string) string {
	const max = 512
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "... [truncated]"
}
