package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return NewFromViper(NewEmptyViper())
}

func TestPipelineDefaults(t *testing.T) {
	cfg := defaultConfig().GetPipeline()

	assert.Equal(t, 60, cfg.SpamSkipThreshold)
	assert.Equal(t, 60, cfg.SummaryMinImportance)
	assert.Equal(t, 4, cfg.MaxWorkers)
	assert.Empty(t, cfg.WhitelistedDomains)
}

func TestDigestDefaults(t *testing.T) {
	cfg := defaultConfig().GetDigest()

	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 70, cfg.SpamScoreThreshold)
	assert.Equal(t, 1, cfg.MinSpamCount)
}

func TestLLMDefaults(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, "openai", cfg.GetLLM().Provider)
	assert.Equal(t, "gpt-4o", cfg.GetOpenAI().ModelName)
	assert.Equal(t, 4096, cfg.GetOpenAI().MaxBodySize)
	assert.Equal(t, "us-east-1", cfg.GetBedrock().Region)
}

func TestCacheDefaults(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, "memory", cfg.GetString("cache.type"))
	assert.True(t, cfg.GetBool("cache.enabled"))

	ttl, err := cfg.GetDuration("cache.ttl")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestMailDefaults(t *testing.T) {
	mail := defaultConfig().GetMail()

	assert.Equal(t, "gmail", mail.Source)
	assert.Equal(t, "gmail", mail.Sender)
}

func TestOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("llm.provider", "gemini")
	v.Set("pipeline.max_workers", 8)
	cfg := NewFromViper(v)

	assert.Equal(t, "gemini", cfg.GetLLM().Provider)
	assert.Equal(t, 8, cfg.GetPipeline().MaxWorkers)
}
