package anthropic

import (
	"errors"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json",
			input: `{"value": "x"}`,
			want:  `{"value": "x"}`,
		},
		{
			name:  "fenced with language",
			input: "```json\n{\"value\": \"x\"}\n```",
			want:  `{"value": "x"}`,
		},
		{
			name:  "fenced without language",
			input: "```\n{\"value\": \"x\"}\n```",
			want:  `{"value": "x"}`,
		},
		{
			name:  "leading prose",
			input: "Here is the extraction:\n{\"value\": \"x\"}",
			want:  `{"value": "x"}`,
		},
		{
			name:  "trailing prose",
			input: "{\"value\": \"x\"}\nLet me know if you need more.",
			want:  `{"value": "x"}`,
		},
		{
			name:  "surrounding whitespace",
			input: "  \n{\"value\": \"x\"}\n  ",
			want:  `{"value": "x"}`,
		},
		{
			name:  "no json at all",
			input: "plain text",
			want:  "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.input))
		})
	}
}

func TestText(t *testing.T) {
	resp := &MessageResponse{
		Content: []ContentBlock{
			{Type: "text", Text: "first"},
			{Type: "text", Text: ""},
			{Type: "text", Text: "second"},
		},
	}
	assert.Equal(t, "first\nsecond", Text(resp))
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "", Text(&MessageResponse{}))
}

func TestEstimateCost(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 18.00, usage.EstimateCost("claude-sonnet-4-5-20250929"), 0.001)
	assert.InDelta(t, 4.80, usage.EstimateCost("claude-haiku-4-5-20251001"), 0.001)
	assert.Equal(t, 0.0, usage.EstimateCost("unknown-model"))
	assert.Equal(t, 0.0, TokenUsage{}.EstimateCost("claude-sonnet-4-5-20250929"))
}

func TestIsRetryable(t *testing.T) {
	for _, status := range []int{408, 429, 500, 502, 503, 504, 529} {
		err := &sdk.Error{StatusCode: status}
		assert.True(t, IsRetryable(err), "status %d should be retryable", status)
	}

	assert.False(t, IsRetryable(&sdk.Error{StatusCode: 400}))
	assert.False(t, IsRetryable(&sdk.Error{StatusCode: 401}))
	assert.False(t, IsRetryable(errors.New("not an api error")))
	assert.False(t, IsRetryable(nil))
}
