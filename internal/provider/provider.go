// Package provider abstracts the language-model backends used by the
// generation stages. Every stage issues single-shot system+prompt
// completions; the cache layer above never sees a provider directly.
package provider

import (
	"context"
)

// Request is one completion request.
type Request struct {
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
}

// Usage reports token consumption for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the model's reply.
type Response struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Provider defines the interface for AI model interactions.
type Provider interface {
	// Complete sends one system+user exchange and returns the reply.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider identifier (e.g. "stub", "openai").
	Name() string
}

const defaultMaxTokens = 4096

func maxTokensOrDefault(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
