package rewrite

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/llm"
)

// Rewriter reformulates a question for better vectorstore retrieval while
// preserving its semantic meaning.
type Rewriter struct {
	llmClient llm.Client
	logger    *zerolog.Logger
}

func NewRewriter(client llm.Client, logger *zerolog.Logger) *Rewriter {
	return &Rewriter{
		llmClient: client,
		logger:    logger,
	}
}

// Rewrite returns a retrieval-optimized reformulation of question. The output
// is guaranteed non-empty and, where the model cooperates, different from the
// input: an identical rewrite is retried once at a higher temperature so the
// transform loop makes forward progress. If the model still echoes the input,
// the input is returned and the caller's attempt budget absorbs the no-op.
func (r *Rewriter) Rewrite(ctx context.Context, question string) (string, error) {
	rewritten, err := r.invoke(ctx, question, 0.2)
	if err != nil {
		return "", err
	}

	if rewritten == question {
		r.logger.Warn().Str("question", question).Msg("rewriter returned its input, retrying at higher temperature")
		rewritten, err = r.invoke(ctx, question, 0.7)
		if err != nil {
			return "", err
		}
	}

	if rewritten == "" {
		rewritten = question
	}

	r.logger.Info().
		Str("original", question).
		Str("rewritten", rewritten).
		Msg("query rewritten")

	return rewritten, nil
}

func (r *Rewriter) invoke(ctx context.Context, question string, temperature float64) (string, error) {
	response, err := r.llmClient.InvokeModel(ctx, llm.Request{
		Prompt:      r.buildPrompt(question),
		MaxTokens:   200,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("unable to rewrite query: %w", err)
	}

	return strings.TrimSpace(response.Content), nil
}

func (r *Rewriter) buildPrompt(question string) string {
	return fmt.Sprintf(`You are a question re-writer that reformulates questions for better vectorstore retrieval.

Rules:
1. Keep the SAME semantic meaning as the original question
2. Only rephrase to improve keyword matching, NOT to change what is being asked
3. Preserve ALL technical terms exactly (e.g. "JSON", "MySQL", "index", "PostgreSQL")
4. Do NOT add assumptions or interpretations beyond what the user asked
5. Do NOT expand the scope of the question

Good example:
- Original: "How to index JSON array in MySQL?" -> Rewritten: "MySQL JSON array indexing methods and techniques"

Bad example (do not do this):
- Original: "How to index JSON array in MySQL?" -> "What are the best database optimization techniques?" (too broad)

Original question: %s

Output ONLY the rewritten question, nothing else.`, question)
}
