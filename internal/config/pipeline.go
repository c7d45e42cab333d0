package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func LoadPipelineConfig() (*PipelineConfig, error) {
	path := os.Getenv("PIPELINE_CONFIG_PATH")
	if path == "" {
		path = "configs/pipeline.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *PipelineConfig) {
	if cfg.Limits.MaxGenerationAttempts == 0 {
		cfg.Limits.MaxGenerationAttempts = 2
	}
	if cfg.Limits.MaxTransformAttempts == 0 {
		cfg.Limits.MaxTransformAttempts = 2
	}
	if cfg.Retrieval.K == 0 {
		cfg.Retrieval.K = 4
	}
	if cfg.Generate.RetryTemperatureIncrement == 0 {
		cfg.Generate.RetryTemperatureIncrement = 0.1
	}
}

func (c *PipelineConfig) Validate() error {
	if c.Limits.MaxGenerationAttempts < 1 {
		return fmt.Errorf("limits.max_generation_attempts must be positive, got %d", c.Limits.MaxGenerationAttempts)
	}
	if c.Limits.MaxTransformAttempts < 1 {
		return fmt.Errorf("limits.max_transform_attempts must be positive, got %d", c.Limits.MaxTransformAttempts)
	}
	if c.Retrieval.K < 1 {
		return fmt.Errorf("retrieval.k must be positive, got %d", c.Retrieval.K)
	}
	if c.Retrieval.MinSimilarity < 0 || c.Retrieval.MinSimilarity > 1 {
		return fmt.Errorf("retrieval.min_similarity must be in [0, 1], got %f", c.Retrieval.MinSimilarity)
	}
	if c.Generate.Temperature < 0 || c.Generate.Temperature > 1 {
		return fmt.Errorf("generation.temperature must be in [0, 1], got %f", c.Generate.Temperature)
	}
	return nil
}
