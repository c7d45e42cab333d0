package store

// Chunk is one row of the document_chunks table joined with its collection.
type Chunk struct {
	ID           string
	CollectionID string
	Title        string
	Content      string
	Metadata     map[string]string
	Distance     float64
}
