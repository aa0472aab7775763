package llm

import (
	"context"
	"time"
)

// Provider abstracts an LLM provider (OpenAI, Anthropic, Ollama, etc.)
// Translation prompts are single-turn, so a provider only has to answer one
// system + user exchange.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Name() string
	Models() []string
}

// CompletionRequest is the input for a single-turn completion.
type CompletionRequest struct {
	Model       string  `json:"model"`
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Completion is the output of a single-turn completion.
type Completion struct {
	ID           string  `json:"id"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Content      string  `json:"content"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
