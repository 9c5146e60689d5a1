package imagegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/nusduck/ImagebotCloudflare/internal/config"
)

const (
	expanderTemperature = 0.6
	expanderMaxTokens   = 300
	expanderTimeout     = 300 * time.Second
)

const expanderSystemPrompt = "You are a text-to-image prompt engineer for SDXL. " +
	"Convert the user request into ONE concise but vivid English prompt suitable for SDXL. " +
	"Do not include any policy text. Do not output markdown. Do not output JSON. " +
	"Keep it descriptive: subject, style, composition, lighting, colors, details. " +
	"The target image size is %dx%d (keep composition suitable for this aspect ratio)."

// Expander turns short user text into a single English generation prompt
// via an OpenAI-compatible chat completion backend (DeepSeek).
type Expander struct {
	client openai.Client
	model  string
	logger *zap.SugaredLogger
}

func NewExpander(cfg config.BackendConfig, logger *zap.SugaredLogger) *Expander {
	client := openai.NewClient(
		option.WithAPIKey(cfg.Key),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(expanderTimeout),
	)
	return &Expander{client: client, model: cfg.Models, logger: logger}
}

// Expand produces the final generation prompt for the given target size.
// A blank model reply is a hard failure: no generation call may be
// issued with an empty prompt.
func (e *Expander) Expand(ctx context.Context, userText string, width, height int) (string, error) {
	cleaned := StripRatioTokens(userText)

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(expanderSystemPrompt, width, height)),
			openai.UserMessage(cleaned),
		},
		Temperature: openai.Float(expanderTemperature),
		MaxTokens:   openai.Int(expanderMaxTokens),
	})
	if err != nil {
		return "", newError(KindTransport, "prompt expansion call failed: "+err.Error(), err)
	}

	var out string
	if len(resp.Choices) > 0 {
		out = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if out == "" {
		return "", newError(KindEmptyExpansion, "language model returned an empty prompt", nil)
	}

	e.logger.Debugw("prompt expanded", "model", e.model, "prompt", out)
	return out, nil
}
