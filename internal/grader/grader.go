package grader

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/llm"
)

// Each grader answers a strict yes/no question about its textual inputs and
// never surfaces an error to the pipeline: a failed or unparseable model call
// is retried once and then downgraded to the negative answer.

const graderMaxTokens = 128

type binaryGrade struct {
	BinaryScore string `json:"binary_score"`
}

// invokeBinary sends a grading prompt, retrying a failed call once, and
// reduces the response to a boolean. Defaults to false on persistent failure.
func invokeBinary(ctx context.Context, client llm.Client, prompt string, name string, logger *zerolog.Logger) bool {
	request := llm.Request{
		Prompt:      prompt,
		MaxTokens:   graderMaxTokens,
		Temperature: 0.0, // deterministic
	}

	resp, err := client.InvokeModel(ctx, request)
	if err != nil {
		logger.Warn().Err(err).Str("grader", name).Msg("LLM call failed, retrying once")
		resp, err = client.InvokeModel(ctx, request)
	}
	if err != nil {
		logger.Error().Err(err).Str("grader", name).Msg("LLM call failed after retry, defaulting to no")
		return false
	}

	verdict, ok := parseBinary(resp.Content)
	if !ok {
		logger.Error().Str("grader", name).Str("content", resp.Content).Msg("unparseable grade, defaulting to no")
		return false
	}

	logger.Debug().Str("grader", name).Bool("verdict", verdict).Msg("grade completed")
	return verdict
}

func parseBinary(content string) (verdict bool, ok bool) {
	content = stripMarkdownCodeBlock(content)

	var grade binaryGrade
	if err := json.Unmarshal([]byte(content), &grade); err == nil && grade.BinaryScore != "" {
		return strings.EqualFold(strings.TrimSpace(grade.BinaryScore), "yes"), true
	}

	// Some models ignore the JSON instruction and answer in plain text.
	lowered := strings.ToLower(strings.TrimSpace(content))
	switch {
	case strings.HasPrefix(lowered, "yes"):
		return true, true
	case strings.HasPrefix(lowered, "no"):
		return false, true
	}

	return false, false
}

// stripMarkdownCodeBlock removes ```json fences some models wrap around
// structured output.
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		firstNewline := strings.Index(content, "\n")
		if firstNewline == -1 {
			return content
		}

		closingBackticks := strings.LastIndex(content, "```")
		if closingBackticks == -1 || closingBackticks <= firstNewline {
			return content
		}

		content = content[firstNewline+1 : closingBackticks]
		content = strings.TrimSpace(content)
	}

	return content
}
