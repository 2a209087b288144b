package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMemoryConfig_Defaults(t *testing.T) {
	dir := t.TempDir()

	c, err := LoadMemoryConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "lobug_memory.db"), c.DBPath)
	assert.Equal(t, 30, c.ShortTermThreshold)
	assert.Equal(t, 10, c.ShortTermKeep)
	assert.Equal(t, 20, c.LongTermThreshold)
	assert.Equal(t, 10, c.LongTermKeep)
	assert.Equal(t, 5, c.RetrievalTopK)
	assert.InDelta(t, 0.3, c.RetrievalMinSimilarity, 1e-9)
	assert.Equal(t, 2*time.Second, c.RetrievalTimeout)
	assert.Equal(t, "nomic-embed-text", c.EmbeddingModel)
	assert.Equal(t, 768, c.EmbeddingDim)
	assert.InDelta(t, 0.15, c.DuplicateDistanceThreshold, 1e-9)
	assert.InDelta(t, 0.7, c.MaxFactDistance(), 1e-9)
}

func TestLoadMemoryConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	yml := "short_term_threshold: 12\nshort_term_keep: 4\ndb_path: custom.db\nembedding_dim: 384\n"
	require.NoError(t, os.WriteFile(MemoryFilePath(dir), []byte(yml), 0o600))

	t.Setenv("LOBUG_SHORT_TERM_THRESHOLD", "40")
	t.Setenv("LOBUG_RETRIEVAL_TIMEOUT", "750ms")

	c, err := LoadMemoryConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 40, c.ShortTermThreshold, "env overrides yaml")
	assert.Equal(t, 4, c.ShortTermKeep, "yaml overrides default")
	assert.Equal(t, 384, c.EmbeddingDim)
	assert.Equal(t, filepath.Join(dir, "custom.db"), c.DBPath)
	assert.Equal(t, 20, c.LongTermThreshold, "untouched default")
	assert.Equal(t, 750*time.Millisecond, c.RetrievalTimeout)
}

func TestMemoryConfig_Validate(t *testing.T) {
	base := DefaultMemoryConfig(t.TempDir())

	tests := []struct {
		name    string
		mutate  func(*MemoryConfig)
		wantErr bool
	}{
		{"defaults", func(*MemoryConfig) {}, false},
		{"keep above threshold is allowed", func(c *MemoryConfig) { c.ShortTermKeep = 50 }, false},
		{"zero dim", func(c *MemoryConfig) { c.EmbeddingDim = 0 }, true},
		{"similarity above one", func(c *MemoryConfig) { c.RetrievalMinSimilarity = 1.5 }, true},
		{"negative keep", func(c *MemoryConfig) { c.LongTermKeep = -1 }, true},
		{"empty db path", func(c *MemoryConfig) { c.DBPath = "" }, true},
		{"negative retrieval timeout", func(c *MemoryConfig) { c.RetrievalTimeout = -time.Second }, true},
		{"unbounded retrieval", func(c *MemoryConfig) { c.RetrievalTimeout = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLLMConfig_Resolve(t *testing.T) {
	t.Setenv("LOBUG_LLM_PROVIDER", "OpenRouter")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	c, err := ParseLLMConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenRouter, c.Provider)
	assert.Equal(t, "https://openrouter.ai/api/v1", c.ResolveBaseURL())
	assert.Equal(t, "or-key", c.ResolveAPIKey())
}

func TestGetRuntimePath(t *testing.T) {
	abs := t.TempDir()
	t.Setenv("LOBUG_RUNTIME_PATH", abs)
	assert.Equal(t, abs, GetRuntimePath())
}

func TestLoadDotEnv_Missing(t *testing.T) {
	assert.NoError(t, LoadDotEnv(t.TempDir()))
}

func TestWriteMemoryFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	c := DefaultMemoryConfig(dir)
	c.ShortTermThreshold = 12
	require.NoError(t, WriteMemoryFile(dir, c))

	data, err := os.ReadFile(MemoryFilePath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(data), "db_path: lobug_memory.db")

	loaded, err := LoadMemoryConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}
