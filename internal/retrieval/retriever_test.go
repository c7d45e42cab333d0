package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/models"
	"github.com/davisjr/adaptive-rag/internal/store"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type stubStore struct {
	collections []models.Collection
	chunks      map[string][]store.Chunk
	searchErr   error
}

func (s *stubStore) SemanticSearch(_ context.Context, collectionID string, _ []float32, limit int) ([]store.Chunk, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	chunks := s.chunks[collectionID]
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}
	return chunks, nil
}

func (s *stubStore) GetCollection(_ context.Context, collectionID string) (models.Collection, error) {
	for _, c := range s.collections {
		if c.ID == collectionID {
			return c, nil
		}
	}
	return models.Collection{}, fmt.Errorf("collection %s not found", collectionID)
}

func (s *stubStore) GetCollections(_ context.Context) ([]models.Collection, error) {
	return s.collections, nil
}

type stubEmbedder struct {
	err   error
	calls int
}

func (e *stubEmbedder) GenerateEmbeddings(_ context.Context, _ string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func chunk(id, collectionID string, distance float64) store.Chunk {
	return store.Chunk{ID: id, CollectionID: collectionID, Content: "text " + id, Distance: distance}
}

func testStore() *stubStore {
	return &stubStore{
		collections: []models.Collection{
			{ID: "stackoverflow", Source: models.SourceStackOverflow},
			{ID: "pdf", Source: models.SourcePDF},
		},
		chunks: map[string][]store.Chunk{
			"stackoverflow": {chunk("s1", "stackoverflow", 0.1), chunk("s2", "stackoverflow", 0.2), chunk("s3", "stackoverflow", 0.3)},
			"pdf":           {chunk("p1", "pdf", 0.15), chunk("p2", "pdf", 0.25)},
		},
	}
}

func ids(docs []models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestSearch_InterleavesCollections(t *testing.T) {
	retriever := NewRetriever(testStore(), &stubEmbedder{}, 0.0, newTestLogger())

	docs, err := retriever.Search(context.Background(), "query", []string{"stackoverflow", "pdf"}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"s1", "p1", "s2", "p2"}
	if fmt.Sprint(ids(docs)) != fmt.Sprint(want) {
		t.Errorf("ids = %v, want %v", ids(docs), want)
	}
	if docs[0].Source != models.SourceStackOverflow || docs[1].Source != models.SourcePDF {
		t.Error("source attribution missing")
	}
}

func TestSearch_EmptyCollectionListSearchesAll(t *testing.T) {
	embedder := &stubEmbedder{}
	retriever := NewRetriever(testStore(), embedder, 0.0, newTestLogger())

	docs, err := retriever.Search(context.Background(), "query", nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 5 {
		t.Errorf("got %d documents, want 5", len(docs))
	}
	// One embedding call regardless of collection count.
	if embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1", embedder.calls)
	}
}

func TestSearch_ScoresFromDistance(t *testing.T) {
	retriever := NewRetriever(testStore(), &stubEmbedder{}, 0.0, newTestLogger())

	docs, err := retriever.Search(context.Background(), "query", []string{"stackoverflow"}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].Score == nil {
		t.Fatal("expected one scored document")
	}
	if got := *docs[0].Score; got < 0.89 || got > 0.91 {
		t.Errorf("score = %v, want ~0.9", got)
	}
}

func TestSearch_MinScoreFiltersWeakMatches(t *testing.T) {
	s := testStore()
	s.chunks["stackoverflow"] = []store.Chunk{chunk("s1", "stackoverflow", 0.1), chunk("weak", "stackoverflow", 0.9)}
	retriever := NewRetriever(s, &stubEmbedder{}, 0.5, newTestLogger())

	docs, err := retriever.Search(context.Background(), "query", []string{"stackoverflow"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "s1" {
		t.Errorf("ids = %v, want [s1]", ids(docs))
	}
}

func TestSearch_NoMatchesIsNotAnError(t *testing.T) {
	s := testStore()
	s.chunks = map[string][]store.Chunk{}
	retriever := NewRetriever(s, &stubEmbedder{}, 0.0, newTestLogger())

	docs, err := retriever.Search(context.Background(), "query", nil, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents, want 0", len(docs))
	}
}

func TestSearch_UnknownCollectionFails(t *testing.T) {
	retriever := NewRetriever(testStore(), &stubEmbedder{}, 0.0, newTestLogger())

	if _, err := retriever.Search(context.Background(), "query", []string{"nope"}, 4); err == nil {
		t.Error("expected error for unknown collection")
	}
}

func TestSearch_EmbedderFailurePropagates(t *testing.T) {
	retriever := NewRetriever(testStore(), &stubEmbedder{err: errors.New("throttled")}, 0.0, newTestLogger())

	if _, err := retriever.Search(context.Background(), "query", nil, 4); err == nil {
		t.Error("expected error")
	}
}

func TestDistanceToScore_Clamps(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0.0, 1.0},
		{0.5, 0.5},
		{1.0, 0.0},
		{1.7, 0.0},
		{-0.3, 1.0},
	}
	for _, tc := range cases {
		if got := distanceToScore(tc.distance); got != tc.want {
			t.Errorf("distanceToScore(%v) = %v, want %v", tc.distance, got, tc.want)
		}
	}
}
