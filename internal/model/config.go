package model

import (
	"fmt"
	"time"
)

// Config holds the complete termgov configuration
type Config struct {
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Review     ReviewConfig     `yaml:"review" mapstructure:"review"`
	Locale     LocaleConfig     `yaml:"locale" mapstructure:"locale"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// ClassifierConfig holds the decision ladder constants.
// Tier N's lower bound must be >= tier N+1's.
type ClassifierConfig struct {
	Backend                string  `yaml:"backend" mapstructure:"backend"` // "rules"
	RetrievalThreshold     float64 `yaml:"retrieval_threshold" mapstructure:"retrieval_threshold"`
	ExactMatch             float64 `yaml:"exact_match" mapstructure:"exact_match"`
	HighSimilarity         float64 `yaml:"high_similarity" mapstructure:"high_similarity"`
	ProposeThreshold       float64 `yaml:"propose_threshold" mapstructure:"propose_threshold"`
	NoCandidatesConfidence float64 `yaml:"no_candidates_confidence" mapstructure:"no_candidates_confidence"`
	ProposeConfidence      float64 `yaml:"propose_confidence" mapstructure:"propose_confidence"`
	MaxCandidates          int     `yaml:"max_candidates" mapstructure:"max_candidates"`
	MaxMatched             int     `yaml:"max_matched" mapstructure:"max_matched"`
}

// Validate checks ranges and tier ordering
func (c ClassifierConfig) Validate() error {
	values := map[string]float64{
		"retrieval_threshold":      c.RetrievalThreshold,
		"exact_match":              c.ExactMatch,
		"high_similarity":          c.HighSimilarity,
		"propose_threshold":        c.ProposeThreshold,
		"no_candidates_confidence": c.NoCandidatesConfidence,
		"propose_confidence":       c.ProposeConfidence,
	}
	for name, v := range values {
		if v < 0 || v > 1 {
			return fmt.Errorf("classifier.%s must be within [0,1], got %v", name, v)
		}
	}
	if c.ExactMatch < c.HighSimilarity || c.HighSimilarity < c.ProposeThreshold || c.ProposeThreshold < c.RetrievalThreshold {
		return fmt.Errorf("classifier thresholds out of order: exact_match(%v) >= high_similarity(%v) >= propose_threshold(%v) >= retrieval_threshold(%v) required",
			c.ExactMatch, c.HighSimilarity, c.ProposeThreshold, c.RetrievalThreshold)
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("classifier.max_candidates must be positive, got %d", c.MaxCandidates)
	}
	if c.MaxMatched < 0 || c.MaxMatched > c.MaxCandidates {
		return fmt.Errorf("classifier.max_matched must be within [0,%d], got %d", c.MaxCandidates, c.MaxMatched)
	}
	return nil
}

// PathsConfig locates the injected documents
type PathsConfig struct {
	Registry     string `yaml:"registry" mapstructure:"registry"`
	Translations string `yaml:"translations" mapstructure:"translations"` // Root directory: <root>/<locale>/<namespace>.json
	ReviewQueue  string `yaml:"review_queue" mapstructure:"review_queue"`
}

// ReviewConfig selects the review queue backend
type ReviewConfig struct {
	Backend  string `yaml:"backend" mapstructure:"backend"` // "file" or "sqlite"
	Reviewer string `yaml:"reviewer" mapstructure:"reviewer"`
}

// LocaleConfig holds locale fallback settings
type LocaleConfig struct {
	Default string `yaml:"default" mapstructure:"default"`
}

// CacheConfig configures the resolution cache
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// BatchConfig configures batch classification
type BatchConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig configures CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	JSON    bool `yaml:"json" mapstructure:"json"`
}

// DefaultClassifierConfig returns the rule ladder constants
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Backend:                "rules",
		RetrievalThreshold:     0.4,
		ExactMatch:             0.95,
		HighSimilarity:         0.85,
		ProposeThreshold:       0.70,
		NoCandidatesConfidence: 0.75,
		ProposeConfidence:      0.8,
		MaxCandidates:          10,
		MaxMatched:             5,
	}
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Classifier: DefaultClassifierConfig(),
		Paths: PathsConfig{
			Registry:     "terminology/registry.yaml",
			Translations: "terminology/translations",
			ReviewQueue:  "terminology/review-queue.json",
		},
		Review: ReviewConfig{
			Backend:  "file",
			Reviewer: "",
		},
		Locale: LocaleConfig{
			Default: "en",
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             30 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}
