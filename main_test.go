package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"track_agents/publisher"
)

func TestBuildLLM(t *testing.T) {
	ctx := context.Background()
	t.Setenv("ANTHROPIC_API_KEY", "")

	cases := []struct {
		name    string
		llm     publisher.LLMConfig
		wantErr string
	}{
		{name: "openai", llm: publisher.LLMConfig{Provider: "openai", Model: "gpt-4.1-mini", APIKey: "k"}},
		{name: "openai without key", llm: publisher.LLMConfig{Provider: "openai", Model: "gpt-4.1-mini"}, wantErr: "api_key"},
		{name: "deepseek", llm: publisher.LLMConfig{Provider: "deepseek", Model: "deepseek-chat", APIKey: "k", BaseURL: "https://api.deepseek.com/v1/"}},
		{name: "deepseek without base url", llm: publisher.LLMConfig{Provider: "deepseek", Model: "deepseek-chat", APIKey: "k"}, wantErr: "base_url"},
		{name: "anthropic", llm: publisher.LLMConfig{Provider: "anthropic", Model: "claude-sonnet-4-20250514", APIKey: "k"}},
		{name: "anthropic without key", llm: publisher.LLMConfig{Provider: "anthropic", Model: "claude-sonnet-4-20250514"}, wantErr: "api_key"},
		{name: "mock", llm: publisher.LLMConfig{Provider: "mock"}},
		{name: "missing", llm: publisher.LLMConfig{}, wantErr: "llm config missing"},
		{name: "unknown", llm: publisher.LLMConfig{Provider: "llama"}, wantErr: "not supported"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			llm, err := buildLLM(ctx, publisher.Config{LLM: tc.llm})
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, llm)
		})
	}
}
