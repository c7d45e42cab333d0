package retrieval

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/embedding"
	"github.com/davisjr/adaptive-rag/internal/models"
	"github.com/davisjr/adaptive-rag/internal/store"
)

// Store is the slice of the persistence layer the retriever needs.
type Store interface {
	SemanticSearch(ctx context.Context, collectionID string, queryEmbeddings []float32, limit int) ([]store.Chunk, error)
	GetCollection(ctx context.Context, collectionID string) (models.Collection, error)
	GetCollections(ctx context.Context) ([]models.Collection, error)
}

// Retriever performs semantic similarity search across one or more
// collections. Results from different collections are interleaved
// round-robin so a large collection cannot crowd out a smaller one.
type Retriever struct {
	db       Store
	embedder embedding.Embedder
	minScore float64
	logger   *zerolog.Logger
}

func NewRetriever(db Store, embedder embedding.Embedder, minScore float64, logger *zerolog.Logger) *Retriever {
	return &Retriever{
		db:       db,
		embedder: embedder,
		minScore: minScore,
		logger:   logger,
	}
}

// Search returns at most k documents ranked by similarity. An empty
// collectionIDs slice means all registered collections. A query that matches
// nothing yields an empty slice, not an error.
func (r *Retriever) Search(ctx context.Context, query string, collectionIDs []string, k int) ([]models.Document, error) {
	if len(collectionIDs) == 0 {
		collections, err := r.db.GetCollections(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to list collections: %w", err)
		}
		for _, collection := range collections {
			collectionIDs = append(collectionIDs, collection.ID)
		}
	}

	if len(collectionIDs) == 0 {
		r.logger.Warn().Msg("no collections registered, returning empty result")
		return []models.Document{}, nil
	}

	embeddings, err := r.embedder.GenerateEmbeddings(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to generate query embeddings: %w", err)
	}

	perCollection := make([][]models.Document, 0, len(collectionIDs))
	for _, collectionID := range collectionIDs {
		collection, err := r.db.GetCollection(ctx, collectionID)
		if err != nil {
			return nil, err
		}

		chunks, err := r.db.SemanticSearch(ctx, collectionID, embeddings, k)
		if err != nil {
			return nil, fmt.Errorf("semantic search failed for collection %s: %w", collectionID, err)
		}

		docs := make([]models.Document, 0, len(chunks))
		for _, chunk := range chunks {
			score := distanceToScore(chunk.Distance)
			if score < r.minScore {
				continue
			}
			docs = append(docs, models.Document{
				ID:           chunk.ID,
				Source:       collection.Source,
				Title:        chunk.Title,
				Text:         chunk.Content,
				Score:        &score,
				CollectionID: chunk.CollectionID,
				Metadata:     chunk.Metadata,
			})
		}

		r.logger.Debug().
			Str("collection", collectionID).
			Int("chunks", len(chunks)).
			Int("kept", len(docs)).
			Msg("collection searched")

		perCollection = append(perCollection, docs)
	}

	results := interleave(perCollection, k)

	if len(results) == 0 {
		r.logger.Warn().Str("query", query).Msg("no documents retrieved")
	}

	return results, nil
}

// interleave merges per-collection result lists round-robin, preserving each
// list's internal rank order, and truncates to limit.
func interleave(lists [][]models.Document, limit int) []models.Document {
	merged := []models.Document{}

	for rank := 0; ; rank++ {
		appended := false
		for _, list := range lists {
			if rank >= len(list) {
				continue
			}
			merged = append(merged, list[rank])
			appended = true
			if len(merged) == limit {
				return merged
			}
		}
		if !appended {
			return merged
		}
	}
}

// distanceToScore converts a cosine distance (0 identical, 2 opposite) to a
// similarity score clamped to [0, 1].
func distanceToScore(distance float64) float64 {
	score := 1.0 - distance
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
