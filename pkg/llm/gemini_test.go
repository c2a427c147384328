package llm

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"shiftgrid/config"
)

func TestNewGeminiGenerator_NoAPIKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), &config.GenerationConfig{}, zap.NewNop())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("期望 ErrNotConfigured，实际: %v", err)
	}
}

func TestContentConfig(t *testing.T) {
	params := contentConfig(&config.GenerationConfig{
		Temperature:     0.7,
		TopP:            1,
		TopK:            1,
		MaxOutputTokens: 4096,
	})
	if params.Temperature == nil || *params.Temperature != 0.7 {
		t.Errorf("期望 Temperature=0.7，实际 %v", params.Temperature)
	}
	if params.TopK == nil || *params.TopK != 1 {
		t.Errorf("期望 TopK=1，实际 %v", params.TopK)
	}
	if params.MaxOutputTokens != 4096 {
		t.Errorf("期望 MaxOutputTokens=4096，实际 %d", params.MaxOutputTokens)
	}
}
