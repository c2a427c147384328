package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"shiftgrid/config"
)

var (
	ErrNotConfigured = errors.New("文本生成服务未配置 API Key")
	ErrEmptyResponse = errors.New("文本生成服务返回空内容")
)

// TextGenerator 外部文本生成服务
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator 基于 google.golang.org/genai 的实现
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	params  *genai.GenerateContentConfig
	timeout time.Duration
	logger  *zap.Logger
}

// NewGeminiGenerator 创建 Gemini 客户端
// API Key 为空时返回 ErrNotConfigured，调用方应降级为仅手动模式
func NewGeminiGenerator(ctx context.Context, cfg *config.GenerationConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiGenerator{
		client:  client,
		model:   model,
		params:  contentConfig(cfg),
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

func contentConfig(cfg *config.GenerationConfig) *genai.GenerateContentConfig {
	params := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(cfg.Temperature),
		TopP:        genai.Ptr(cfg.TopP),
		TopK:        genai.Ptr(cfg.TopK),
	}
	if cfg.MaxOutputTokens > 0 {
		params.MaxOutputTokens = cfg.MaxOutputTokens
	}
	return params
}

// Generate 发送提示词并返回拼接后的文本
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		g.params,
	)
	if err != nil {
		return "", fmt.Errorf("调用 Gemini 失败: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	g.logger.Info("Gemini 生成完成",
		zap.String("model", g.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("response_len", len(text)),
		zap.Duration("latency", time.Since(start)),
	)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
