// Package advisor provides optional Claude-backed narrative commentary on
// finished analytics reports. It is strictly best-effort: every report is
// complete without it, and failures never propagate to the caller.
package advisor

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sales-analytics/internal/config"
)

const systemPrompt = `You are a revenue operations analyst. Given a JSON
analytics report, write a short plain-prose commentary (3-5 sentences) for a
sales leader: what stands out, what to act on first. Do not restate every
number. Do not use markdown.`

// Client defines the Anthropic API surface the advisor uses.
type Client interface {
	CreateMessage(ctx context.Context, model string, maxTokens int64, system, user string) (string, error)
}

// Advisor produces narrative commentary for reports.
type Advisor struct {
	client    Client
	model     string
	maxTokens int64
}

// New builds an Advisor from configuration. A missing API key disables the
// advisor: Narrate returns "" without making any calls.
func New(cfg config.AdvisorConfig) *Advisor {
	if cfg.Key == "" {
		return &Advisor{}
	}
	return &Advisor{
		client:    &sdkClient{client: sdk.NewClient(option.WithAPIKey(cfg.Key))},
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// NewWithClient builds an Advisor around an existing client, for tests.
func NewWithClient(client Client, model string, maxTokens int64) *Advisor {
	return &Advisor{client: client, model: model, maxTokens: maxTokens}
}

// Enabled reports whether the advisor will make API calls.
func (a *Advisor) Enabled() bool {
	return a.client != nil
}

// Narrate returns a short commentary on the given report. Any failure is
// logged and swallowed; the caller always gets a usable (possibly empty)
// string.
func (a *Advisor) Narrate(ctx context.Context, reportName, reportJSON string) string {
	if a.client == nil {
		return ""
	}

	user := fmt.Sprintf("Report type: %s\n\n%s", reportName, reportJSON)
	text, err := a.client.CreateMessage(ctx, a.model, a.maxTokens, systemPrompt, user)
	if err != nil {
		zap.L().Warn("advisor: narration failed",
			zap.String("report", reportName),
			zap.Error(err),
		)
		return ""
	}
	return strings.TrimSpace(text)
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
}

func (c *sdkClient) CreateMessage(ctx context.Context, model string, maxTokens int64, system, user string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: maxTokens,
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(user))},
	})
	if err != nil {
		return "", eris.Wrap(err, "advisor: create message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
