package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is the raw content of one source file before chunking.
type Document struct {
	Title    string
	Content  string
	FilePath string
	Metadata map[string]string
}

// QAEntry is one question/answer pair from a Stack Overflow export file.
type QAEntry struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	ShortAnswer string   `json:"short_answer"`
	Tags        []string `json:"tags"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ParseTextFile reads a plain-text document, typically pre-extracted PDF
// text. The filename without extension becomes the document title.
func (p *Parser) ParseTextFile(path string) (*Document, error) {
	path = strings.TrimSpace(path)

	ext := filepath.Ext(path)
	if ext != ".txt" && ext != ".md" {
		return nil, fmt.Errorf("unsupported file type %s (expected .txt or .md)", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file %s is empty", path)
	}

	filename := filepath.Base(path)

	return &Document{
		Title:    strings.TrimSuffix(filename, ext),
		Content:  string(data),
		FilePath: path,
		Metadata: map[string]string{
			"filename":  filename,
			"extension": ext,
		},
	}, nil
}

// ParseQAFile reads a JSON array of question/answer pairs. Entries without
// a question or an answer are rejected so they cannot silently produce
// empty chunks.
func (p *Parser) ParseQAFile(path string) ([]QAEntry, error) {
	path = strings.TrimSpace(path)

	if ext := filepath.Ext(path); ext != ".json" {
		return nil, fmt.Errorf("unsupported file type %s (expected .json)", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var entries []QAEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("file %s contains no entries", path)
	}

	for i, entry := range entries {
		if strings.TrimSpace(entry.Question) == "" {
			return nil, fmt.Errorf("entry %d in %s has no question", i, path)
		}
		if strings.TrimSpace(entry.Answer) == "" {
			return nil, fmt.Errorf("entry %d in %s has no answer", i, path)
		}
	}

	return entries, nil
}
