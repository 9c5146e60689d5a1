package imagegen

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/nusduck/ImagebotCloudflare/internal/config"
)

const (
	fluxTimeout    = 300 * time.Second
	fluxRawPreview = 200
)

var imageURLRE = regexp.MustCompile(`https?://[^\s)]+`)

// FluxClient asks an OpenAI-compatible FLUX backend for an image. The
// backend's contract is weak: the model's natural-language reply happens
// to contain a hosted image URL, which we locate by pattern matching.
// There is no fallback if the reply format changes.
type FluxClient struct {
	client openai.Client
	model  string
	logger *zap.SugaredLogger
}

func NewFluxClient(cfg config.BackendConfig, logger *zap.SugaredLogger) *FluxClient {
	client := openai.NewClient(
		option.WithAPIKey(cfg.Key),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(fluxTimeout),
	)
	return &FluxClient{client: client, model: cfg.Models, logger: logger}
}

// GenerateURL sends the prompt as the sole user turn (non-streaming) and
// returns the first URL found in the reply.
func (f *FluxClient) GenerateURL(ctx context.Context, prompt string) (string, error) {
	resp, err := f.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(f.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", newError(KindTransport, "flux call failed: "+err.Error(), err)
	}

	var text string
	if len(resp.Choices) > 0 {
		text = strings.TrimSpace(resp.Choices[0].Message.Content)
	}

	url, err := extractImageURL(text)
	if err != nil {
		return "", err
	}
	f.logger.Debugw("flux returned image url", "model", f.model, "url", url)
	return url, nil
}

// extractImageURL finds the first well-formed URL in free text, failing
// with a truncated preview of the raw reply for diagnostics.
func extractImageURL(text string) (string, error) {
	if url := imageURLRE.FindString(text); url != "" {
		return url, nil
	}
	return "", newError(KindNoURLInResponse, "flux returned no URL. raw="+truncateRunes(text, fluxRawPreview), nil)
}

// truncateRunes shortens s to at most n runes, keeping UTF-8 intact.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
