package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/nutrameter-backend/internal/config"
)

func TestNewAnalyzer(t *testing.T) {
	log := zap.NewNop()

	cfg := &config.Config{AnalyzerProvider: config.AnalyzerGemini}
	assert.Nil(t, newAnalyzer(cfg, log))

	cfg.GeminiAPIKey = "key"
	a := newAnalyzer(cfg, log)
	require.NotNil(t, a)
	assert.Equal(t, "gemini", a.Name())

	cfg = &config.Config{AnalyzerProvider: config.AnalyzerOpenAI, OpenAIAPIKey: "key", OpenAIModel: "gpt-4o-mini"}
	a = newAnalyzer(cfg, log)
	require.NotNil(t, a)
	assert.Equal(t, "openai", a.Name())
}

func TestNewUploaderUnconfigured(t *testing.T) {
	assert.Nil(t, newUploader(&config.Config{}, zap.NewNop()))
}

func TestConnectRedisDisabled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	assert.Nil(t, connectRedis(ctx, &config.Config{}, zap.NewNop()))
}

func TestRootCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
}
