package store

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/davisjr/adaptive-rag/internal/models"
)

// GetCollections returns the metadata of every registered collection.
func (db *DB) GetCollections(ctx context.Context) ([]models.Collection, error) {
	query := `
	SELECT
	  c.id,
	  c.name,
	  c.source_type,
	  COUNT(dc.id) AS chunk_count
	FROM collections c
	LEFT JOIN document_chunks dc ON dc.collection_id = c.id
	GROUP BY c.id, c.name, c.source_type
	ORDER BY c.name`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch collections: %w", err)
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		var collection models.Collection
		if err := rows.Scan(&collection.ID, &collection.Name, &collection.Source, &collection.ChunkCount); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		collections = append(collections, collection)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return collections, nil
}

// GetCollection looks up one collection by id. Returns pgx.ErrNoRows wrapped
// when the id is unknown.
func (db *DB) GetCollection(ctx context.Context, collectionID string) (models.Collection, error) {
	query := `
	SELECT
	  c.id,
	  c.name,
	  c.source_type,
	  COUNT(dc.id) AS chunk_count
	FROM collections c
	LEFT JOIN document_chunks dc ON dc.collection_id = c.id
	WHERE c.id = $1
	GROUP BY c.id, c.name, c.source_type`

	var collection models.Collection
	row := db.Pool.QueryRow(ctx, query, collectionID)
	if err := row.Scan(&collection.ID, &collection.Name, &collection.Source, &collection.ChunkCount); err != nil {
		return models.Collection{}, fmt.Errorf("unknown collection %s: %w", collectionID, err)
	}

	return collection, nil
}

// SemanticSearch runs a cosine-distance search over one collection's chunks,
// ordered by ascending distance.
func (db *DB) SemanticSearch(ctx context.Context, collectionID string, queryEmbeddings []float32, limit int) ([]Chunk, error) {
	embedding := pgvector.NewVector(queryEmbeddings)

	query := `
	SELECT
	  id,
	  collection_id,
	  title,
	  content,
	  metadata,
	  embedding <=> $1 AS distance
	FROM document_chunks
	WHERE collection_id = $2
	ORDER BY distance ASC
	LIMIT $3`

	rows, err := db.Pool.Query(ctx, query, embedding, collectionID, limit)
	if err != nil {
		return nil, fmt.Errorf("unable to query the database: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var chunk Chunk
		if err := rows.Scan(&chunk.ID, &chunk.CollectionID, &chunk.Title, &chunk.Content, &chunk.Metadata, &chunk.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}
