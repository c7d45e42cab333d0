package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/llm"
	"github.com/davisjr/adaptive-rag/internal/models"
)

const generatorMaxTokens = 1024

// Generator produces a natural-language answer from a question and its
// retrieved context. With no documents it degrades to answering from the
// model's parametric knowledge, which keeps the pipeline's no-relevant-docs
// fallback path viable.
type Generator struct {
	llmClient llm.Client
	logger    *zerolog.Logger
}

func NewGenerator(client llm.Client, logger *zerolog.Logger) *Generator {
	return &Generator{
		llmClient: client,
		logger:    logger,
	}
}

func (g *Generator) Generate(ctx context.Context, question string, documents []models.Document, temperature float64) (string, error) {
	var prompt string
	if len(documents) == 0 {
		prompt = g.buildPurePrompt(question)
	} else {
		prompt = g.buildRAGPrompt(question, documents)
	}

	response, err := g.llmClient.InvokeModelWithRetry(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   generatorMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}

	answer := strings.TrimSpace(response.Content)
	if answer == "" {
		return "", fmt.Errorf("model returned an empty answer")
	}

	g.logger.Debug().
		Int("documents", len(documents)).
		Int("answer_length", len(answer)).
		Msg("answer generated")

	return answer, nil
}

func (g *Generator) buildRAGPrompt(question string, documents []models.Document) string {
	return fmt.Sprintf(`You are an assistant for question-answering tasks.
Use the following pieces of retrieved context to answer the question.

IMPORTANT:
- Focus on the user's specific question only
- Do NOT answer unrelated questions from the context

Provide a complete answer that includes:
- A clear explanation of the problem or concept
- The solution (code, query, etc.) if applicable
- Any relevant details that help understanding

If you don't know the answer, just say that you don't know.

Question: %s

Context:

%s`, question, models.FormatDocuments(documents))
}

func (g *Generator) buildPurePrompt(question string) string {
	return fmt.Sprintf(`You are an assistant for question-answering tasks.
Answer the question to the best of your knowledge based on your training.
If you don't know the answer, just say that you don't know.
Keep the answer concise but informative.
Your answer should include an explanation for the problem and a possible solution when applicable.

Question: %s`, question)
}
