package imagegen

import (
	"context"

	"go.uber.org/zap"
)

// Workers AI provider endpoints reachable through the gateway.
const (
	EndpointSDXL            = "@cf/stabilityai/stable-diffusion-xl-base-1.0"
	EndpointLeonardoPhoenix = "@cf/leonardo/phoenix-1.0"
)

const sdxlNumSteps = 20

// Result is the outcome of one structured-gateway generation, consumed
// immediately by the relay step and never cached.
type Result struct {
	Image  []byte
	Prompt string
	Width  int
	Height int
	Label  string
}

// Generator orchestrates one structured-gateway generation: credentials
// check, aspect-ratio detection, prompt expansion, gateway job.
type Generator struct {
	expander *Expander
	gateway  *GatewayClient
	logger   *zap.SugaredLogger
}

func NewGenerator(expander *Expander, gateway *GatewayClient, logger *zap.SugaredLogger) *Generator {
	return &Generator{expander: expander, gateway: gateway, logger: logger}
}

// GenerateSDXL produces an image via Workers AI SDXL.
func (g *Generator) GenerateSDXL(ctx context.Context, userText string) (*Result, error) {
	return g.generate(ctx, userText, EndpointSDXL, "SDXL", map[string]any{"num_steps": sdxlNumSteps})
}

// GenerateLeonardo produces an image via Workers AI Leonardo Phoenix.
// Width/height limits may vary on the provider side.
func (g *Generator) GenerateLeonardo(ctx context.Context, userText string) (*Result, error) {
	return g.generate(ctx, userText, EndpointLeonardoPhoenix, "Leonardo Phoenix", nil)
}

func (g *Generator) generate(ctx context.Context, userText, endpoint, label string, extra map[string]any) (*Result, error) {
	// Identity first: no expansion call is worth making if the gateway
	// call can never be issued.
	if err := g.gateway.checkCredentials(); err != nil {
		return nil, err
	}

	width, height := PickSize(userText)
	prompt, err := g.expander.Expand(ctx, userText, width, height)
	if err != nil {
		return nil, err
	}

	query := map[string]any{
		"prompt": prompt,
		"width":  width,
		"height": height,
	}
	for k, v := range extra {
		query[k] = v
	}

	g.logger.Infow("dispatching generation job", "endpoint", endpoint, "width", width, "height", height)
	img, err := g.gateway.Generate(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	return &Result{Image: img, Prompt: prompt, Width: width, Height: height, Label: label}, nil
}
