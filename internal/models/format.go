package models

import (
	"strings"
)

// FormatDocuments concatenates document texts separated by blank lines, the
// shape both the generator and the graders feed into their prompts.
func FormatDocuments(docs []Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, doc.Text)
	}
	return strings.Join(parts, "\n\n")
}
