package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/davisjr/adaptive-rag/internal/models"
)

// NewChunk is one chunk prepared for insertion, with its embedding already
// computed.
type NewChunk struct {
	Index     int
	Title     string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// EnsureCollection registers a collection, or updates its name and source
// type if the id already exists.
func (db *DB) EnsureCollection(ctx context.Context, id, name string, source models.SourceType) error {
	query := `
	INSERT INTO collections (id, name, source_type, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, source_type = EXCLUDED.source_type`

	if _, err := db.Pool.Exec(ctx, query, id, name, source); err != nil {
		return fmt.Errorf("failed to upsert collection %s: %w", id, err)
	}
	return nil
}

// InsertChunks writes a batch of chunks into one collection in a single
// transaction. Either every chunk lands or none do.
func (db *DB) InsertChunks(ctx context.Context, collectionID string, chunks []NewChunk) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
	INSERT INTO document_chunks (id, collection_id, chunk_index, title, content, embedding, metadata, created_at)
	VALUES (uuid_generate_v4(), $1, $2, $3, $4, $5, $6, NOW())`

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal chunk metadata: %w", err)
		}

		vector := pgvector.NewVector(chunk.Embedding)

		if _, err := tx.Exec(ctx, query, collectionID, chunk.Index, chunk.Title, chunk.Content, vector, metadataJSON); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.Index, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteCollection removes a collection and all of its chunks.
func (db *DB) DeleteCollection(ctx context.Context, collectionID string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM document_chunks WHERE collection_id = $1`, collectionID); err != nil {
		return fmt.Errorf("failed to delete chunks of collection %s: %w", collectionID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM collections WHERE id = $1`, collectionID); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", collectionID, err)
	}

	return tx.Commit(ctx)
}
