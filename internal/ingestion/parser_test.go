package ingestion

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseTextFile_Success(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "networking-basics.txt")
	if err := os.WriteFile(path, []byte("TCP handshakes use three segments."), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	parser := NewParser()
	doc, err := parser.ParseTextFile(path)
	if err != nil {
		t.Fatalf("ParseTextFile() failed: %v", err)
	}

	if doc.Title != "networking-basics" {
		t.Errorf("Expected title 'networking-basics', got %q", doc.Title)
	}
	if doc.Content != "TCP handshakes use three segments." {
		t.Errorf("Unexpected content: %q", doc.Content)
	}
	if doc.Metadata["filename"] != "networking-basics.txt" {
		t.Errorf("Expected filename metadata, got %q", doc.Metadata["filename"])
	}
}

func TestParseTextFile_RejectsUnsupportedExtension(t *testing.T) {
	parser := NewParser()
	if _, err := parser.ParseTextFile("document.pdf"); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}

func TestParseTextFile_RejectsEmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "empty.txt")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	parser := NewParser()
	if _, err := parser.ParseTextFile(path); err == nil {
		t.Error("Expected error for empty file")
	}
}

func TestParseQAFile_Success(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "export.json")
	content := `[
  {"question": "How do I cancel a context?", "answer": "Call the cancel func.", "tags": ["go", "context"]},
  {"question": "What is a goroutine?", "answer": "A lightweight thread.", "short_answer": "lightweight thread"}
]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	parser := NewParser()
	entries, err := parser.ParseQAFile(path)
	if err != nil {
		t.Fatalf("ParseQAFile() failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Question != "How do I cancel a context?" {
		t.Errorf("Unexpected question: %q", entries[0].Question)
	}
	if entries[1].ShortAnswer != "lightweight thread" {
		t.Errorf("Unexpected short answer: %q", entries[1].ShortAnswer)
	}
}

func TestParseQAFile_RejectsEntryWithoutAnswer(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "export.json")
	content := `[{"question": "Why?", "answer": "  "}]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	parser := NewParser()
	if _, err := parser.ParseQAFile(path); err == nil {
		t.Error("Expected error for entry without an answer")
	}
}

func TestParseQAFile_RejectsEmptyArray(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "export.json")
	if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	parser := NewParser()
	if _, err := parser.ParseQAFile(path); err == nil {
		t.Error("Expected error for empty export")
	}
}
