package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "bare object",
			response: `{"a":1}`,
			want:     `{"a":1}`,
		},
		{
			name:     "json code fence",
			response: "```json\n{\"a\":1}\n```",
			want:     `{"a":1}`,
		},
		{
			name:     "plain code fence",
			response: "```\n[1,2,3]\n```",
			want:     `[1,2,3]`,
		},
		{
			name:     "surrounding prose",
			response: `Here is the result you asked for: {"a": {"b": 2}} hope it helps!`,
			want:     `{"a": {"b": 2}}`,
		},
		{
			name:     "braces inside strings",
			response: `{"text":"closing brace } inside"} trailing`,
			want:     `{"text":"closing brace } inside"}`,
		},
		{
			name:     "escaped quotes inside strings",
			response: `{"text":"she said \"hi\""}`,
			want:     `{"text":"she said \"hi\""}`,
		},
		{
			name:     "array before object",
			response: `[{"a":1}] and then {"b":2}`,
			want:     `[{"a":1}]`,
		},
		{
			name:     "no json at all",
			response: "I cannot answer that.",
			wantErr:  true,
		},
		{
			name:     "unbalanced object",
			response: `{"a": 1`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONResponse(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	got, err := ParseJSONResponse[payload]("```json\n{\"name\":\"x\",\"count\":3}\n```")
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "x", Count: 3}, got)

	_, err = ParseJSONResponse[payload](`{"name": 42}`)
	require.Error(t, err)
}

func TestGenerateJSON_AppendsInstruction(t *testing.T) {
	client := NewMockTextClient()
	client.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return `{"ok":true}`, nil
	}

	type result struct {
		OK bool `json:"ok"`
	}
	got, err := GenerateJSON[result](context.Background(), client, "produce a thing")
	require.NoError(t, err)
	assert.True(t, got.OK)

	prompts := client.Prompts()
	require.Len(t, prompts, 1)
	assert.True(t, strings.HasPrefix(prompts[0], "produce a thing"))
	assert.Contains(t, prompts[0], "ONLY valid JSON")
}

func TestGenerateJSON_PropagatesError(t *testing.T) {
	client := NewMockTextClient()
	client.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("boom")
	}

	_, err := GenerateJSON[map[string]any](context.Background(), client, "p")
	require.Error(t, err)
}
