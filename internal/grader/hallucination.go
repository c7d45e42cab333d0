package grader

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/llm"
	"github.com/davisjr/adaptive-rag/internal/models"
)

// HallucinationGrader decides whether a generated answer is factually
// supported by the retrieved documents.
type HallucinationGrader struct {
	llmClient llm.Client
	logger    *zerolog.Logger
}

func NewHallucinationGrader(client llm.Client, logger *zerolog.Logger) *HallucinationGrader {
	return &HallucinationGrader{
		llmClient: client,
		logger:    logger,
	}
}

func (g *HallucinationGrader) Grade(ctx context.Context, answer string, documents []models.Document) bool {
	if len(documents) == 0 {
		g.logger.Warn().Msg("no documents to check the answer against")
		return false
	}

	prompt := g.buildPrompt(answer, documents)
	return invokeBinary(ctx, g.llmClient, prompt, "hallucination-grader", g.logger)
}

func (g *HallucinationGrader) buildPrompt(answer string, documents []models.Document) string {
	return fmt.Sprintf(`You are a grader assessing whether an LLM generation is factually supported by retrieved documents.

Guidelines:
1. Focus on FACTUAL CONTENT, not exact wording
2. If the answer's key information can be traced back to ANY of the provided documents, answer 'yes'
3. Rephrasing, simplification, or reorganization is ACCEPTABLE, not hallucination
4. Only answer 'no' if the generation contains MAJOR claims that have NO basis in the provided documents

Set of facts:

%s

LLM generation: %s

Respond ONLY in raw JSON with no markdown, no code blocks, no explanation:
{"binary_score": "yes"} or {"binary_score": "no"}`, models.FormatDocuments(documents), answer)
}
