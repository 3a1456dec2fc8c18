package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LUMEN_DATABASE_URL", "postgres://localhost/lumen")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "postgres://localhost/lumen", cfg.DatabaseURL)
	assert.Equal(t, 1536, cfg.EmbeddingDimensions)
	assert.Equal(t, 30*time.Minute, cfg.SearchCacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.CacheSweepInterval)
	assert.Equal(t, 0.5, cfg.SimilarityThreshold)
	assert.Equal(t, 5, cfg.SearchTopK)
	assert.Equal(t, "lumen-documents", cfg.S3Bucket)
	assert.Equal(t, "us-east-1", cfg.S3Region)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LUMEN_DATABASE_URL", "postgres://db/lumen")
	t.Setenv("LUMEN_PORT", "9090")
	t.Setenv("LUMEN_DEBUG", "true")
	t.Setenv("LUMEN_SEARCH_CACHE_TTL", "10m")
	t.Setenv("LUMEN_SEARCH_TOP_K", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 10*time.Minute, cfg.SearchCacheTTL)
	assert.Equal(t, 12, cfg.SearchTopK)
}

func TestHasS3(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasS3())

	cfg.S3Endpoint = "http://localhost:9000"
	assert.False(t, cfg.HasS3(), "credentials still missing")

	cfg.S3AccessKey = "key"
	cfg.S3SecretKey = "secret"
	assert.True(t, cfg.HasS3())
}

func TestHasOpenAI(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasOpenAI())

	cfg.OpenAIAPIKey = "sk-test"
	assert.True(t, cfg.HasOpenAI())
}
