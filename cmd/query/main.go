package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/davisjr/adaptive-rag/internal/models"
	"github.com/davisjr/adaptive-rag/internal/pipeline"
	"github.com/davisjr/adaptive-rag/internal/setup"
)

func main() {
	question := flag.String("q", "", "Question to answer")
	collections := flag.String("collections", "", "Comma-separated collection IDs (default: all)")
	strategy := flag.String("strategy", string(models.StrategyAdaptive), "Strategy: adaptive_rag, simple_rag, pure_llm")
	maxGen := flag.Int("max-generation-attempts", 0, "Override max generation attempts")
	maxTransform := flag.Int("max-transform-attempts", 0, "Override max transform attempts")
	temperature := flag.Float64("temperature", 0, "Override base generation temperature")
	flag.Parse()

	if *question == "" {
		fmt.Fprintln(os.Stderr, "Usage: query -q '<question>'")
		flag.PrintDefaults()
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := setup.LoadConfig()
	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer deps.Store.Close()

	var collectionIDs []string
	if *collections != "" {
		collectionIDs = strings.Split(*collections, ",")
	}

	limits := pipeline.Limits{
		MaxGenerationAttempts: *maxGen,
		MaxTransformAttempts:  *maxTransform,
		Temperature:           *temperature,
	}
	result, err := deps.Selector.Run(ctx, models.Strategy(*strategy), *question, collectionIDs, limits)
	if err != nil {
		log.Fatal().Err(err).Msg("Query failed")
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(output))
}
