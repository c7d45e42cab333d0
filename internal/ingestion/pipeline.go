package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/models"
	"github.com/davisjr/adaptive-rag/internal/store"
)

// batchSize bounds how many chunks are embedded and inserted per round so a
// large export does not hold one giant transaction open.
const batchSize = 25

// Embedder is the vector side of ingestion, satisfied by
// embedding.BedrockEmbedder.
type Embedder interface {
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline ingests source files into a collection: parse, chunk, embed,
// insert.
type Pipeline struct {
	parser   *Parser
	chunker  *Chunker
	embedder Embedder
	db       *store.DB
	logger   *zerolog.Logger
}

func NewPipeline(parser *Parser, chunker *Chunker, embedder Embedder, db *store.DB, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{
		parser:   parser,
		chunker:  chunker,
		embedder: embedder,
		db:       db,
		logger:   logger,
	}
}

// IngestTextDocument chunks one text file into an existing or new pdf-type
// collection.
func (p *Pipeline) IngestTextDocument(ctx context.Context, collectionID, collectionName, filePath string) error {
	p.logger.Info().Str("file", filePath).Str("collection", collectionID).Msg("Starting ingestion")

	doc, err := p.parser.ParseTextFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}

	chunks := p.chunker.ChunkText(doc.Content)
	if len(chunks) == 0 {
		return fmt.Errorf("document %s produced no chunks", doc.Title)
	}
	p.logger.Info().Str("title", doc.Title).Int("chunk_count", len(chunks)).Msg("Document chunked")

	if err := p.db.EnsureCollection(ctx, collectionID, collectionName, models.SourcePDF); err != nil {
		return err
	}

	newChunks := make([]store.NewChunk, 0, len(chunks))
	for _, chunk := range chunks {
		metadata := map[string]string{
			"filename": doc.Metadata["filename"],
		}
		newChunks = append(newChunks, store.NewChunk{
			Index:    chunk.Index,
			Title:    doc.Title,
			Content:  chunk.Content,
			Metadata: metadata,
		})
	}

	if err := p.embedAndInsert(ctx, collectionID, newChunks); err != nil {
		return err
	}

	p.logger.Info().
		Str("collection", collectionID).
		Int("chunks", len(newChunks)).
		Msg("Ingestion complete")
	return nil
}

// IngestQAFile loads a Stack Overflow export into an existing or new
// stackoverflow-type collection. Each question/answer pair becomes exactly
// one chunk so retrieval always returns whole answers.
func (p *Pipeline) IngestQAFile(ctx context.Context, collectionID, collectionName, filePath string) error {
	p.logger.Info().Str("file", filePath).Str("collection", collectionID).Msg("Starting ingestion")

	entries, err := p.parser.ParseQAFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}
	p.logger.Info().Int("entries", len(entries)).Msg("Export parsed")

	if err := p.db.EnsureCollection(ctx, collectionID, collectionName, models.SourceStackOverflow); err != nil {
		return err
	}

	newChunks := make([]store.NewChunk, 0, len(entries))
	for i, entry := range entries {
		metadata := map[string]string{
			"question": entry.Question,
		}
		if entry.ShortAnswer != "" {
			metadata["short_answer"] = entry.ShortAnswer
		}
		if len(entry.Tags) > 0 {
			metadata["tags"] = strings.Join(entry.Tags, ",")
		}

		newChunks = append(newChunks, store.NewChunk{
			Index:    i,
			Title:    entry.Question,
			Content:  fmt.Sprintf("Question: %s\n\nAnswer: %s", entry.Question, entry.Answer),
			Metadata: metadata,
		})
	}

	if err := p.embedAndInsert(ctx, collectionID, newChunks); err != nil {
		return err
	}

	p.logger.Info().
		Str("collection", collectionID).
		Int("chunks", len(newChunks)).
		Msg("Ingestion complete")
	return nil
}

func (p *Pipeline) embedAndInsert(ctx context.Context, collectionID string, chunks []store.NewChunk) error {
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		embeddings, err := p.embedder.GenerateBatchEmbeddings(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}

		for i := range batch {
			batch[i].Embedding = embeddings[i]
		}

		if err := p.db.InsertChunks(ctx, collectionID, batch); err != nil {
			return fmt.Errorf("failed to store chunks: %w", err)
		}

		p.logger.Info().Int("batch", start/batchSize+1).Int("chunks", len(batch)).Msg("Batch complete")
	}

	return nil
}
