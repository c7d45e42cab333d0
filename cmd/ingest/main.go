package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/davisjr/adaptive-rag/internal/embedding"
	"github.com/davisjr/adaptive-rag/internal/ingestion"
	"github.com/davisjr/adaptive-rag/internal/setup"
	"github.com/davisjr/adaptive-rag/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ingestCommand := flag.Bool("ingest", false, "Ingest a source file into a collection")
	filePath := flag.String("file", "", "Path to the source file (.txt/.md for documents, .json for Q&A exports)")
	sourceType := flag.String("source", "", "Source type: 'stackoverflow' or 'pdf'")
	collectionID := flag.String("collection", "", "Collection id")
	collectionName := flag.String("name", "", "Collection display name (defaults to the collection id)")
	chunkSize := flag.Int("chunk-size", 500, "Chunk size in bytes for document ingestion")
	chunkOverlap := flag.Int("chunk-overlap", 100, "Chunk overlap in bytes for document ingestion")

	listCommand := flag.Bool("list", false, "List registered collections")

	deleteCommand := flag.Bool("delete", false, "Delete a collection and its chunks")

	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Unable to load env variables")
	}

	ctx := context.Background()
	cfg := setup.LoadConfig()

	db, err := store.New(ctx, store.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("Database connected")

	switch {
	case *listCommand:
		collections, err := db.GetCollections(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Unable to fetch collections")
		}
		for _, collection := range collections {
			log.Info().
				Str("id", collection.ID).
				Str("name", collection.Name).
				Str("source", string(collection.Source)).
				Int("chunks", collection.ChunkCount).
				Msg("collection")
		}

	case *deleteCommand:
		if *collectionID == "" {
			log.Fatal().Msg("required flag -collection not provided")
		}
		if err := db.DeleteCollection(ctx, *collectionID); err != nil {
			log.Fatal().Err(err).Msg("Failed to delete collection")
		}
		log.Info().Str("collection", *collectionID).Msg("Collection deleted")

	case *ingestCommand:
		if *collectionID == "" || *filePath == "" {
			log.Fatal().Msg("required flags -collection and -file not provided")
		}
		name := *collectionName
		if name == "" {
			name = *collectionID
		}

		embedder, err := embedding.NewBedrockEmbedder(ctx, cfg.AWSRegion, cfg.TitanModelID)
		if err != nil {
			log.Fatal().Err(err).Msg("Unable to create embedder")
		}

		parser := ingestion.NewParser()
		chunker := ingestion.NewChunker(*chunkSize, *chunkOverlap)
		pipeline := ingestion.NewPipeline(parser, chunker, embedder, db, &log.Logger)

		switch *sourceType {
		case "stackoverflow":
			if err := pipeline.IngestQAFile(ctx, *collectionID, name, *filePath); err != nil {
				log.Fatal().Err(err).Msg("Ingestion failed")
			}
		case "pdf":
			if err := pipeline.IngestTextDocument(ctx, *collectionID, name, *filePath); err != nil {
				log.Fatal().Err(err).Msg("Ingestion failed")
			}
		default:
			log.Fatal().Str("source", *sourceType).Msg("Unsupported source type. Use 'stackoverflow' or 'pdf'")
		}
		log.Info().Msg("Ingestion successful!")

	default:
		log.Fatal().Msg("Unsupported command. Use -ingest, -list or -delete")
	}
}
