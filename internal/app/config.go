package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/productintel-backend/internal/chunkindex"
	"github.com/yungbote/productintel-backend/internal/matcher"
	"github.com/yungbote/productintel-backend/internal/platform/envutil"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

type Config struct {
	Port          string
	MinConfidence float64
	TopKMatches   int
	TopKRetrieval int
	ChunkPolicy   chunkindex.ChunkPolicy
	Weights       matcher.Weights
	AnswerTimeout time.Duration
}

// fileConfig mirrors Config for the optional CONFIG_PATH YAML file. Pointer
// fields distinguish "absent" from zero so the file only overrides what it
// actually sets.
type fileConfig struct {
	Port                 *string  `yaml:"port"`
	MinConfidence        *float64 `yaml:"min_confidence"`
	TopKMatches          *int     `yaml:"top_k_matches"`
	TopKRetrieval        *int     `yaml:"top_k_retrieval"`
	ChunkSize            *int     `yaml:"chunk_size"`
	ChunkOverlap         *int     `yaml:"chunk_overlap"`
	AnswerTimeoutSeconds *int     `yaml:"answer_timeout_seconds"`

	Weights *struct {
		Title   float64 `yaml:"title"`
		Model   float64 `yaml:"model"`
		Brand   float64 `yaml:"brand"`
		Aliases float64 `yaml:"aliases"`
	} `yaml:"weights"`
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:          envutil.String("PORT", "8000"),
		MinConfidence: envutil.Float("MIN_CONFIDENCE", 0.6),
		TopKMatches:   envutil.Int("TOP_K_MATCHES", 3),
		TopKRetrieval: envutil.Int("TOP_K_RETRIEVAL", 5),
		ChunkPolicy: chunkindex.ChunkPolicy{
			Size:     envutil.Int("CHUNK_SIZE", 300),
			Overlap:  envutil.Int("CHUNK_OVERLAP", 75),
			MinWords: envutil.Int("CHUNK_MIN_WORDS", 20),
		},
		Weights: matcher.Weights{
			Title:   envutil.Float("WEIGHT_TITLE", 0.5),
			Model:   envutil.Float("WEIGHT_MODEL", 0.3),
			Brand:   envutil.Float("WEIGHT_BRAND", 0.15),
			Aliases: envutil.Float("WEIGHT_ALIASES", 0.05),
		},
		AnswerTimeout: time.Duration(envutil.Int("ANSWER_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	if path := envutil.String("CONFIG_PATH", ""); path != "" {
		if err := applyConfigFile(&cfg, path); err != nil {
			return Config{}, err
		}
		log.Info("Applied config file overrides", "path", path)
	}

	if err := cfg.Weights.Validate(); err != nil {
		return Config{}, fmt.Errorf("match weights: %w", err)
	}
	if err := cfg.ChunkPolicy.Validate(); err != nil {
		return Config{}, fmt.Errorf("chunk policy: %w", err)
	}
	return cfg, nil
}

func applyConfigFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if fc.MinConfidence != nil {
		cfg.MinConfidence = *fc.MinConfidence
	}
	if fc.TopKMatches != nil {
		cfg.TopKMatches = *fc.TopKMatches
	}
	if fc.TopKRetrieval != nil {
		cfg.TopKRetrieval = *fc.TopKRetrieval
	}
	if fc.ChunkSize != nil {
		cfg.ChunkPolicy.Size = *fc.ChunkSize
	}
	if fc.ChunkOverlap != nil {
		cfg.ChunkPolicy.Overlap = *fc.ChunkOverlap
	}
	if fc.AnswerTimeoutSeconds != nil {
		cfg.AnswerTimeout = time.Duration(*fc.AnswerTimeoutSeconds) * time.Second
	}
	if fc.Weights != nil {
		cfg.Weights = matcher.Weights{
			Title:   fc.Weights.Title,
			Model:   fc.Weights.Model,
			Brand:   fc.Weights.Brand,
			Aliases: fc.Weights.Aliases,
		}
	}
	return nil
}
