package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// MemoryConfig holds the tunables of the tiered memory.
// Values come from defaults, then memory.yaml, then the environment.
type MemoryConfig struct {
	DBPath string `yaml:"db_path" env:"LOBUG_DB_PATH"`

	ShortTermThreshold int `yaml:"short_term_threshold" env:"LOBUG_SHORT_TERM_THRESHOLD"`
	ShortTermKeep      int `yaml:"short_term_keep" env:"LOBUG_SHORT_TERM_KEEP"`
	LongTermThreshold  int `yaml:"long_term_threshold" env:"LOBUG_LONG_TERM_THRESHOLD"`
	LongTermKeep       int `yaml:"long_term_keep" env:"LOBUG_LONG_TERM_KEEP"`

	RetrievalTopK          int     `yaml:"retrieval_top_k" env:"LOBUG_RETRIEVAL_TOP_K"`
	RetrievalMinSimilarity float64 `yaml:"retrieval_min_similarity" env:"LOBUG_RETRIEVAL_MIN_SIMILARITY"`

	// Bound on the inline query embed and fact search; 0 disables it.
	RetrievalTimeout time.Duration `yaml:"retrieval_timeout" env:"LOBUG_RETRIEVAL_TIMEOUT"`

	EmbeddingModel string `yaml:"embedding_model" env:"LOBUG_EMBEDDING_MODEL"`
	EmbeddingDim   int    `yaml:"embedding_dim" env:"LOBUG_EMBEDDING_DIM"`

	DuplicateDistanceThreshold float64 `yaml:"duplicate_distance_threshold" env:"LOBUG_DUPLICATE_DISTANCE_THRESHOLD"`

	ExtractionMaxTokens int `yaml:"extraction_max_tokens" env:"LOBUG_EXTRACTION_MAX_TOKENS"`
	EmbeddingCacheSize  int `yaml:"embedding_cache_size" env:"LOBUG_EMBEDDING_CACHE_SIZE"`
}

func DefaultMemoryConfig(runtime string) MemoryConfig {
	return MemoryConfig{
		DBPath:                     filepath.Join(runtime, "lobug_memory.db"),
		ShortTermThreshold:         30,
		ShortTermKeep:              10,
		LongTermThreshold:          20,
		LongTermKeep:               10,
		RetrievalTopK:              5,
		RetrievalMinSimilarity:     0.3,
		RetrievalTimeout:           2 * time.Second,
		EmbeddingModel:             "nomic-embed-text",
		EmbeddingDim:               768,
		DuplicateDistanceThreshold: 0.15,
		ExtractionMaxTokens:        1500,
		EmbeddingCacheSize:         4096,
	}
}

// LoadMemoryConfig applies <runtime>/memory.yaml and then LOBUG_* variables
// on top of the defaults.
func LoadMemoryConfig(runtime string) (MemoryConfig, error) {
	c := DefaultMemoryConfig(runtime)

	data, err := os.ReadFile(MemoryFilePath(runtime))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return c, fmt.Errorf("read memory config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("decode %s: %w", memoryFileName, err)
		}
	}

	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse memory env: %w", err)
	}

	if c.DBPath != "" && !filepath.IsAbs(c.DBPath) {
		c.DBPath = filepath.Join(runtime, c.DBPath)
	}

	return c, c.Validate()
}

// Validate rejects values no component can work with. keep >= threshold is
// accepted; the cascade simply never fires.
func (c MemoryConfig) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is empty"))
	}
	if c.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding_dim must be positive, got %d", c.EmbeddingDim))
	}
	if c.RetrievalMinSimilarity < 0 || c.RetrievalMinSimilarity > 1 {
		errs = append(errs, fmt.Errorf("retrieval_min_similarity must be in [0,1], got %v", c.RetrievalMinSimilarity))
	}
	if c.DuplicateDistanceThreshold < 0 || c.DuplicateDistanceThreshold > 2 {
		errs = append(errs, fmt.Errorf("duplicate_distance_threshold must be in [0,2], got %v", c.DuplicateDistanceThreshold))
	}
	if c.ShortTermKeep < 0 || c.LongTermKeep < 0 || c.ShortTermThreshold < 0 || c.LongTermThreshold < 0 {
		errs = append(errs, errors.New("cascade thresholds and keep counts must not be negative"))
	}
	if c.RetrievalTimeout < 0 {
		errs = append(errs, fmt.Errorf("retrieval_timeout must not be negative, got %s", c.RetrievalTimeout))
	}
	if c.RetrievalTopK < 0 {
		errs = append(errs, fmt.Errorf("retrieval_top_k must not be negative, got %d", c.RetrievalTopK))
	}
	return errors.Join(errs...)
}

// MaxFactDistance converts the similarity floor into a cosine distance cap.
func (c MemoryConfig) MaxFactDistance() float64 {
	return 1 - c.RetrievalMinSimilarity
}

// WriteMemoryFile saves c as <runtime>/memory.yaml. A database inside the
// runtime directory is written as a relative path.
func WriteMemoryFile(runtime string, c MemoryConfig) error {
	if rel, err := filepath.Rel(runtime, c.DBPath); err == nil && filepath.IsLocal(rel) {
		c.DBPath = rel
	}

	data, err := yaml.Marshal(&c)
	if err != nil {
		return fmt.Errorf("encode memory config: %w", err)
	}
	if err := os.MkdirAll(runtime, 0o755); err != nil {
		return fmt.Errorf("create runtime directory: %w", err)
	}
	return os.WriteFile(MemoryFilePath(runtime), data, 0o644)
}
