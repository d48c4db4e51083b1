package loop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vision-architect-api/internal/application/genutil"
	"vision-architect-api/internal/application/prompt"
	"vision-architect-api/internal/config"
	"vision-architect-api/internal/infrastructure/provider/openai"
	apperrors "vision-architect-api/pkg/errors"
	"vision-architect-api/pkg/logger"
	"vision-architect-api/pkg/metrics"
)

// OpenAIGenerator OpenAI JSON 生成接口
type OpenAIGenerator interface {
	GenerateJSON(ctx context.Context, model, systemPrompt, userPrompt string) (string, *openai.Usage, error)
}

// OpenAIResolver 按调用方 Key 解析 OpenAI 客户端
type OpenAIResolver func(clientKey string) OpenAIGenerator

// Service 循环周期生成服务。该路由仅支持 OpenAI。
type Service struct {
	cfg     *config.Config
	prompts *prompt.Registry
	openai  OpenAIResolver
}

// NewService 创建循环周期生成服务
func NewService(cfg *config.Config, prompts *prompt.Registry, openaiClient *openai.Client) *Service {
	return &Service{
		cfg:     cfg,
		prompts: prompts,
		openai: func(clientKey string) OpenAIGenerator {
			return openaiClient.WithAPIKey(clientKey)
		},
	}
}

// NewServiceWithResolver 以自定义客户端解析器创建服务（测试用）
func NewServiceWithResolver(cfg *config.Config, prompts *prompt.Registry, resolver OpenAIResolver) *Service {
	return &Service{cfg: cfg, prompts: prompts, openai: resolver}
}

// Generate 生成下一个循环周期。
// 提示词内嵌完整的历史周期日志，由模型自行维持连续性锁。
func (s *Service) Generate(ctx context.Context, req *Request) (*LoopCycle, error) {
	start := time.Now()
	cycle, err := s.generate(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.GenerationTotal.WithLabelValues("loop_cycle", status).Inc()
	metrics.GenerationDuration.WithLabelValues("loop_cycle").Observe(time.Since(start).Seconds())

	return cycle, err
}

func (s *Service) generate(ctx context.Context, req *Request) (*LoopCycle, error) {
	cycleNumber := len(req.PreviousCycles) + 1

	systemPrompt, userPrompt, err := s.buildPrompts(req, cycleNumber)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to build prompts")
	}

	model := s.cfg.Providers.OpenAI.Model
	client := s.openai(req.ClientAPIKey)
	rawText, usage, err := client.GenerateJSON(ctx, model, systemPrompt, userPrompt)
	if err != nil {
		return nil, mapOpenAIError(ctx, model, err)
	}
	if usage != nil {
		metrics.ProviderTokensUsed.WithLabelValues("openai", model, "prompt").
			Add(float64(usage.PromptTokens))
		metrics.ProviderTokensUsed.WithLabelValues("openai", model, "completion").
			Add(float64(usage.CompletionTokens))
	}

	cycle, err := parseLoopCycle(rawText, cycleNumber)
	if err != nil {
		logger.Error(ctx, "failed to normalize loop cycle", err, "model", model)
		return nil, apperrors.New(apperrors.CodeGenerationFailed, "failed to generate loop cycle")
	}
	return cycle, nil
}

func (s *Service) buildPrompts(req *Request, cycleNumber int) (string, string, error) {
	tpl, err := s.prompts.Get(prompt.PromptLoopCycleV1)
	if err != nil {
		return "", "", err
	}

	system, user := tpl.Render(map[string]string{
		"vision_seed":     req.VisionSeed,
		"references":      joinOrNone(req.InspirationReferences),
		"start_frames":    joinOrNone(req.StartFrames),
		"previous_cycles": renderCyclesLog(req.PreviousCycles),
		"predictive_mode": strconv.FormatBool(req.PredictiveMode),
		"cycle":           strconv.Itoa(cycleNumber),
	})
	return system, user, nil
}

// renderCyclesLog 将历史周期序列化为提示词里的日志
func renderCyclesLog(cycles []LoopCycle) string {
	if len(cycles) == 0 {
		return "(first cycle, no history)"
	}
	data, err := json.MarshalIndent(cycles, "", "  ")
	if err != nil {
		return "(history unavailable)"
	}
	return string(data)
}

func joinOrNone(items []string) string {
	var nonEmpty []string
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			nonEmpty = append(nonEmpty, "- "+item)
		}
	}
	if len(nonEmpty) == 0 {
		return "(none)"
	}
	return strings.Join(nonEmpty, "\n")
}

func mapOpenAIError(ctx context.Context, model string, err error) *apperrors.AppError {
	var configErr *openai.ConfigurationError
	if errors.As(err, &configErr) {
		logger.Error(ctx, "openai is not configured", err, "model", model)
		return apperrors.New(apperrors.CodeProviderNotConfigured, "provider not configured")
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		logger.Warn(ctx, "openai api error",
			"status", strconv.Itoa(apiErr.Status), "message", apiErr.Message)
		return apperrors.New(apperrors.CodeProviderError, apiErr.Message).WithStatus(apiErr.Status)
	}

	logger.Error(ctx, "openai call failed", err, "model", model)
	return apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to generate loop cycle")
}

// parseLoopCycle 容错解析模型输出，结构缺陷快速失败
func parseLoopCycle(rawText string, cycleNumber int) (*LoopCycle, error) {
	jsonText := genutil.ExtractJSONObject(rawText)
	if strings.TrimSpace(jsonText) == "" {
		return nil, fmt.Errorf("empty loop cycle output")
	}

	var cycle LoopCycle
	if err := json.Unmarshal([]byte(jsonText), &cycle); err != nil {
		return nil, fmt.Errorf("failed to parse loop cycle json: %w", err)
	}

	if strings.TrimSpace(cycle.StoryBeat.Prompt) == "" {
		return nil, fmt.Errorf("storyBeat.prompt is required")
	}
	if strings.TrimSpace(cycle.StoryBeat.SubjectIdentity) == "" {
		return nil, fmt.Errorf("storyBeat.subjectIdentity is required")
	}
	if strings.TrimSpace(cycle.EndFrame.Prompt) == "" {
		return nil, fmt.Errorf("endFrame.prompt is required")
	}
	if cycle.Cycle <= 0 {
		cycle.Cycle = cycleNumber
	}
	return &cycle, nil
}
