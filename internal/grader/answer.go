package grader

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/llm"
)

// AnswerGrader decides whether a generated answer actually resolves the
// user's question.
type AnswerGrader struct {
	llmClient llm.Client
	logger    *zerolog.Logger
}

func NewAnswerGrader(client llm.Client, logger *zerolog.Logger) *AnswerGrader {
	return &AnswerGrader{
		llmClient: client,
		logger:    logger,
	}
}

func (g *AnswerGrader) Grade(ctx context.Context, question string, answer string) bool {
	prompt := g.buildPrompt(question, answer)
	return invokeBinary(ctx, g.llmClient, prompt, "answer-grader", g.logger)
}

func (g *AnswerGrader) buildPrompt(question string, answer string) string {
	return fmt.Sprintf(`You are a grader assessing whether an answer addresses and resolves a question.
'yes' means that the answer resolves the question.

User question:

%s

LLM generation: %s

Respond ONLY in raw JSON with no markdown, no code blocks, no explanation:
{"binary_score": "yes"} or {"binary_score": "no"}`, question, answer)
}
