// Package agent implements the generation stages behind the cache gates:
// job analysis, resume matching, tailoring, and quality review, plus the
// coach that drives the interactive skill-discovery dialogue. Each agent
// is a thin prompt-and-decode wrapper around a provider; the pipeline
// above decides when an agent actually runs.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/enn-tee/agentic-job-search/internal/industry"
	"github.com/enn-tee/agentic-job-search/internal/observe"
	"github.com/enn-tee/agentic-job-search/internal/provider"
)

type base struct {
	name     string
	provider provider.Provider
	config   *industry.Config
	obs      *observe.Observer
}

func (b *base) complete(ctx context.Context, system, prompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := b.provider.Complete(ctx, provider.Request{
		System:      system,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s call failed: %w", b.name, err)
	}
	b.obs.Log().Info().
		Str("agent", b.name).
		Int("tokens", resp.Usage.TotalTokens).
		Msg("provider responded")
	return resp.Content, nil
}

// extractJSON pulls the outermost JSON object out of a model reply that
// may be wrapped in prose or a code fence.
func extractJSON(reply string) (string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object found in reply")
	}
	return reply[start : end+1], nil
}

// joinHead joins up to n leading items, for compact prompt context.
func joinHead(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}
