package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"StockScreener/internal/logger"
	"StockScreener/internal/model"
)

// Summarizer turns analysis bundles into a written comparison.
type Summarizer interface {
	Compare(ctx context.Context, bundles []*model.Bundle) (string, error)
}

// ClaudeSummarizer compares bundles with the Anthropic Messages API.
type ClaudeSummarizer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewClaudeSummarizer creates a summarizer. Extra request options, such as
// option.WithBaseURL, are passed to the client.
func NewClaudeSummarizer(apiKey, model string, maxTokens int64, opts ...option.RequestOption) *ClaudeSummarizer {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &ClaudeSummarizer{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (s *ClaudeSummarizer) Compare(ctx context.Context, bundles []*model.Bundle) (string, error) {
	prompt, err := BuildComparePrompt(bundles)
	if err != nil {
		return "", err
	}

	ctx, op := logger.StartOperation(ctx, "report.compare")
	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		op.EndWithError(err)
		return "", fmt.Errorf("claude compare: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	op.End("tickers", len(bundles), "output_tokens", resp.Usage.OutputTokens)
	if out.Len() == 0 {
		return "", errors.New("no response generated from Claude API")
	}
	return out.String(), nil
}
