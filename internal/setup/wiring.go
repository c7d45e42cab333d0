package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/config"
	"github.com/davisjr/adaptive-rag/internal/embedding"
	"github.com/davisjr/adaptive-rag/internal/generate"
	"github.com/davisjr/adaptive-rag/internal/grader"
	"github.com/davisjr/adaptive-rag/internal/llm"
	"github.com/davisjr/adaptive-rag/internal/llm/bedrock"
	"github.com/davisjr/adaptive-rag/internal/llm/gpt"
	"github.com/davisjr/adaptive-rag/internal/pipeline"
	"github.com/davisjr/adaptive-rag/internal/retrieval"
	"github.com/davisjr/adaptive-rag/internal/rewrite"
	"github.com/davisjr/adaptive-rag/internal/store"
)

type Config struct {
	AWSRegion       string
	ClaudeModelID   string
	TitanModelID    string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	JobStream     string
	JobGroup      string
	JobTTL        time.Duration
}

type Dependencies struct {
	Selector *pipeline.Selector
	Store    *store.DB
	Logger   *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		TitanModelID:    getEnv("TITAN_EMBEDDING_MODEL_ID", "amazon.titan-embed-text-v2:0"),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "knowledge_base"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		JobStream:     getEnv("JOB_STREAM", "queries"),
		JobGroup:      getEnv("JOB_GROUP", "query-workers"),
		JobTTL:        time.Duration(getEnvInt("JOB_TTL_HOURS", 24)) * time.Hour,
	}
}

// Wire constructs the full query pipeline: model clients, the vector store,
// graders, and the three strategy controllers behind a selector.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	llmClient, err := createLLMClient(ctx, cfg.DefaultProvider, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	embedder, err := embedding.NewBedrockEmbedder(ctx, cfg.AWSRegion, cfg.TitanModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	db, err := store.New(ctx, store.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pipelineConfig, err := config.LoadPipelineConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline config: %w", err)
	}

	retriever := retrieval.NewRetriever(db, embedder, pipelineConfig.Retrieval.MinSimilarity, logger)
	generator := generate.NewGenerator(llmClient, logger)

	adaptive := pipeline.NewAdaptiveController(
		retriever,
		db,
		grader.NewRelevanceGrader(llmClient, logger),
		grader.NewHallucinationGrader(llmClient, logger),
		grader.NewAnswerGrader(llmClient, logger),
		generator,
		rewrite.NewRewriter(llmClient, logger),
		pipelineConfig,
		logger,
	)
	simple := pipeline.NewSimpleController(retriever, db, generator, pipelineConfig, logger)
	pure := pipeline.NewPureController(generator, pipelineConfig, logger)

	return &Dependencies{
		Selector: pipeline.NewSelector(adaptive, simple, pure),
		Store:    db,
		Logger:   logger,
	}, nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.Client, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	}
}
