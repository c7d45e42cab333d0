package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/davisjr/adaptive-rag/internal/batch"
	"github.com/davisjr/adaptive-rag/internal/jobs"
	"github.com/davisjr/adaptive-rag/internal/setup"
)

func main() {
	data := flag.String("d", "", "Inline JSON query request")
	flag.Parse()

	if *data == "" {
		fmt.Fprintln(os.Stderr, "Usage: enqueue -d '<json>'")
		flag.PrintDefaults()
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	var request batch.QueryRequest
	if err := json.Unmarshal([]byte(*data), &request); err != nil {
		log.Fatal().Err(err).Msg("Invalid query request JSON")
	}

	ctx := context.Background()
	cfg := setup.LoadConfig()

	client, err := jobs.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, 3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer client.Close()

	store := jobs.NewStore(client, cfg.JobStream, cfg.JobTTL, &logger)
	job, err := store.Enqueue(ctx, request)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to enqueue job")
	}

	fmt.Println(job.ID)
}
