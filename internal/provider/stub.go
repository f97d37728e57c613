package provider

import (
	"context"
	"errors"
)

// StubProvider replays scripted responses, for tests and offline demos.
type StubProvider struct {
	Responses []Response
	Calls     int
}

func NewStubProvider(contents ...string) *StubProvider {
	responses := make([]Response, len(contents))
	for i, c := range contents {
		responses[i] = Response{
			Content: c,
			Usage:   Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		}
	}
	return &StubProvider{Responses: responses}
}

func (m *StubProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.Calls++
	if len(m.Responses) == 0 {
		return nil, errors.New("stub provider has no responses left")
	}

	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	return &resp, nil
}

func (m *StubProvider) Name() string {
	return "stub"
}
