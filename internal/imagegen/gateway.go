package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// Generation is slow; the gateway is given a generous budget.
	gatewayTimeout = 180 * time.Second

	providerWorkersAI = "workers-ai"
	gatewayURLFormat  = "https://gateway.ai.cloudflare.com/v1/%s/%s/"
)

// GatewayCredentials is the Cloudflare AI Gateway identity, taken from
// the environment at startup but validated only at first use.
type GatewayCredentials struct {
	AccountID string
	GatewayID string
	Token     string
}

// gatewayJob is the wire structure the gateway expects: a job routed to
// a provider endpoint with its own auth headers and query parameters.
type gatewayJob struct {
	Provider string            `json:"provider"`
	Endpoint string            `json:"endpoint"`
	Headers  map[string]string `json:"headers"`
	Query    map[string]any    `json:"query"`
}

// GatewayClient posts structured jobs to the Cloudflare AI Gateway and
// normalizes its heterogeneous responses to raw image bytes.
type GatewayClient struct {
	http    *http.Client
	creds   GatewayCredentials
	baseURL string
}

func NewGatewayClient(creds GatewayCredentials) *GatewayClient {
	return &GatewayClient{
		http:    &http.Client{Timeout: gatewayTimeout},
		creds:   creds,
		baseURL: fmt.Sprintf(gatewayURLFormat, creds.AccountID, creds.GatewayID),
	}
}

func (c *GatewayClient) checkCredentials() error {
	if c.creds.AccountID == "" || c.creds.GatewayID == "" || c.creds.Token == "" {
		return newError(KindMissingCredentials,
			"missing Cloudflare gateway env vars: account_id/gateway_id/cloudflare_token", nil)
	}
	return nil
}

// Generate posts a one-element job list for the given provider endpoint
// and returns the image bytes. The response is either a binary image or
// a JSON document wrapping a base64 image; anything else fails with
// UnexpectedResponseShape.
func (c *GatewayClient) Generate(ctx context.Context, endpoint string, query map[string]any) ([]byte, error) {
	if err := c.checkCredentials(); err != nil {
		return nil, err
	}

	payload := []gatewayJob{{
		Provider: providerWorkersAI,
		Endpoint: endpoint,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.creds.Token,
			"Content-Type":  "application/json",
		},
		Query: query,
	}}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newError(KindTransport, "gateway request failed: "+err.Error(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindTransport, "reading gateway response failed: "+err.Error(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(truncateBytes(data, 256)))
		return nil, newError(KindTransport,
			fmt.Sprintf("gateway returned status %d: %s", resp.StatusCode, snippet), nil)
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.HasPrefix(ct, "image/") {
		// Opaque binary passthrough.
		return data, nil
	}

	img, ok := extractBase64Image(data)
	if !ok {
		return nil, newError(KindUnexpectedResponseShape,
			fmt.Sprintf("gateway response is not an image and carries no known base64 key (content-type=%s, keys=%v)",
				ct, topLevelKeys(data)), nil)
	}
	return img, nil
}

// imageExtractor is one strategy for locating a base64 image inside a
// JSON body. Strategies are pure and tried in order; first success wins.
type imageExtractor func(body []byte) ([]byte, bool)

func base64At(path string) imageExtractor {
	return func(body []byte) ([]byte, bool) {
		v := gjson.GetBytes(body, path)
		if v.Type != gjson.String || v.Str == "" {
			return nil, false
		}
		raw, err := base64.StdEncoding.DecodeString(v.String())
		if err != nil {
			return nil, false
		}
		return raw, true
	}
}

// The gateway's JSON shape varies by provider; these are the key paths
// observed in practice.
var imageExtractors = []imageExtractor{
	base64At("result.image"),
	base64At("result.image_base64"),
	base64At("image"),
	base64At("image_base64"),
}

func extractBase64Image(body []byte) ([]byte, bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}
	for _, extract := range imageExtractors {
		if img, ok := extract(body); ok {
			return img, true
		}
	}
	return nil, false
}

// topLevelKeys lists the keys of a JSON object body for diagnostics.
func topLevelKeys(body []byte) []string {
	if !gjson.ValidBytes(body) {
		return nil
	}
	m := gjson.ParseBytes(body).Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncateBytes(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
