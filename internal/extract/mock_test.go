package extract

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/summary-analyzer/pkg/anthropic"
)

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

var _ anthropic.Client = (*mockAnthropicClient)(nil)

func reqContains(req any, substr string) bool {
	r, ok := req.(anthropic.MessageRequest)
	if !ok || len(r.Messages) == 0 {
		return false
	}
	return strings.Contains(r.Messages[0].Content, substr)
}

func reqHasSystem(req any, system string) bool {
	r, ok := req.(anthropic.MessageRequest)
	return ok && r.System == system
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 120, OutputTokens: 40},
	}
}
