package grader

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/llm"
	"github.com/davisjr/adaptive-rag/internal/models"
)

// RelevanceGrader decides whether a single retrieved document actually helps
// answer the question, beyond sharing keywords with it.
type RelevanceGrader struct {
	llmClient llm.Client
	logger    *zerolog.Logger
}

func NewRelevanceGrader(client llm.Client, logger *zerolog.Logger) *RelevanceGrader {
	return &RelevanceGrader{
		llmClient: client,
		logger:    logger,
	}
}

func (g *RelevanceGrader) Grade(ctx context.Context, question string, document models.Document) bool {
	prompt := g.buildPrompt(question, document)
	return invokeBinary(ctx, g.llmClient, prompt, "relevance-grader", g.logger)
}

func (g *RelevanceGrader) buildPrompt(question string, document models.Document) string {
	return fmt.Sprintf(`You are a strict grader assessing whether a retrieved document is truly relevant to answer a user question.

A document is ONLY relevant if:
1. It directly addresses the SPECIFIC topic or problem in the question
2. It contains information that would actually help answer the user's EXACT question
3. The content is semantically aligned with the question's intent, not just sharing keywords

Mark as NOT relevant if:
1. The document only shares general keywords (e.g. both mention "SQL" but different topics)
2. The document discusses a related but different concept
3. The document is about a different domain or use-case despite similar terminology

Retrieved document:

%s

User question: %s

Respond ONLY in raw JSON with no markdown, no code blocks, no explanation:
{"binary_score": "yes"} or {"binary_score": "no"}`, document.Text, question)
}
