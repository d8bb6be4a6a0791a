// Package config loads settings from a YAML file with environment variable
// overrides. Environment always wins over the file; defaults cover the rest.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings.
type Config struct {
	Models    Models    `mapstructure:"models"`
	Ollama    Ollama    `mapstructure:"ollama"`
	Store     StoreCfg  `mapstructure:"store"`
	Retrieval Retrieval `mapstructure:"retrieval"`
	Gate      Gate      `mapstructure:"gate"`
	Answer    AnswerCfg `mapstructure:"answer"`
	Prompts   string    `mapstructure:"prompts"`
	Server    Server    `mapstructure:"server"`
}

// Models names the embedding and query models.
type Models struct {
	Embed string `mapstructure:"embed"`
	Query string `mapstructure:"query"`
}

// Ollama holds backend connection settings.
type Ollama struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StoreCfg selects and configures the vector store backend.
type StoreCfg struct {
	Backend    string `mapstructure:"backend"` // "local" or "milvus"
	Dir        string `mapstructure:"dir"`
	Collection string `mapstructure:"collection"`
	Milvus     Milvus `mapstructure:"milvus"`
}

// Milvus holds Milvus connection settings.
type Milvus struct {
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Dim      int    `mapstructure:"dim"`
}

// Retrieval controls chunking and search.
type Retrieval struct {
	ChunkSize    int     `mapstructure:"chunk_size"`
	ChunkOverlap int     `mapstructure:"chunk_overlap"`
	TopK         int     `mapstructure:"top_k"`
	MMR          bool    `mapstructure:"mmr"`
	MMRLambda    float32 `mapstructure:"mmr_lambda"`
}

// Gate holds the relevance gate thresholds.
type Gate struct {
	MinRelevance float32 `mapstructure:"min_relevance"`
	MinGap       float32 `mapstructure:"min_gap"`
}

// AnswerCfg controls answer formation.
type AnswerCfg struct {
	Sentinel        string `mapstructure:"sentinel"`
	MaxContextChars int    `mapstructure:"max_context_chars"`
	ExtractMode     string `mapstructure:"extract_mode"` // "context" or "scan"
}

// Server holds HTTP serve-mode settings.
type Server struct {
	Port   string `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// Load reads settings from path (a missing file keeps defaults) and applies
// DOCQA_* environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("read settings: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode settings: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("models.embed", "nomic-embed-text")
	v.SetDefault("models.query", "qwen3:4b")

	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("ollama.timeout", 2*time.Minute)

	v.SetDefault("store.backend", "local")
	v.SetDefault("store.dir", "storage")
	v.SetDefault("store.collection", "qa_docs")
	v.SetDefault("store.milvus.address", "localhost:19530")
	v.SetDefault("store.milvus.dim", 768)

	v.SetDefault("retrieval.chunk_size", 1200)
	v.SetDefault("retrieval.chunk_overlap", 120)
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.mmr", true)
	v.SetDefault("retrieval.mmr_lambda", 0.5)

	v.SetDefault("gate.min_relevance", 0.08)
	v.SetDefault("gate.min_gap", 0.0)

	v.SetDefault("answer.sentinel", "NOT_STATED")
	v.SetDefault("answer.max_context_chars", 6000)
	v.SetDefault("answer.extract_mode", "context")

	v.SetDefault("prompts", "prompts/query_prompt.yaml")

	v.SetDefault("server.port", "8090")
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "local", "milvus":
	default:
		return fmt.Errorf("store.backend must be local or milvus, got %q", c.Store.Backend)
	}
	switch c.Answer.ExtractMode {
	case "context", "scan":
	default:
		return fmt.Errorf("answer.extract_mode must be context or scan, got %q", c.Answer.ExtractMode)
	}
	if c.Retrieval.MMRLambda < 0 || c.Retrieval.MMRLambda > 1 {
		return fmt.Errorf("retrieval.mmr_lambda must be in [0,1], got %v", c.Retrieval.MMRLambda)
	}
	if c.Answer.Sentinel == "" {
		return fmt.Errorf("answer.sentinel must not be empty")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}
	return nil
}
