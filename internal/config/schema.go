package config

// PipelineConfig is the immutable tuning surface of the query pipelines,
// loaded once at startup and passed into controllers at construction. Two
// controllers with different configs can coexist in one process.
type PipelineConfig struct {
	Limits    LimitsConfig    `yaml:"limits"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Generate  GenerateConfig  `yaml:"generation"`
}

// LimitsConfig bounds the adaptive retry loop. Both values must be positive
// for the pipeline to terminate.
type LimitsConfig struct {
	MaxGenerationAttempts int `yaml:"max_generation_attempts"`
	MaxTransformAttempts  int `yaml:"max_transform_attempts"`
}

type RetrievalConfig struct {
	K             int     `yaml:"k"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

type GenerateConfig struct {
	Temperature               float64 `yaml:"temperature"`
	RetryTemperatureIncrement float64 `yaml:"retry_temperature_increment"`
}
