package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testCredentials() GatewayCredentials {
	return GatewayCredentials{AccountID: "acc", GatewayID: "gw", Token: "tok"}
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*GatewayClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewGatewayClient(testCredentials())
	c.baseURL = srv.URL
	return c, srv
}

func TestGenerateMissingCredentials(t *testing.T) {
	hits := 0
	c, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) { hits++ })
	c.creds = GatewayCredentials{AccountID: "acc"} // gateway id and token absent

	_, err := c.Generate(context.Background(), EndpointSDXL, map[string]any{"prompt": "x"})
	var ge *Error
	if !errors.As(err, &ge) || ge.Kind != KindMissingCredentials {
		t.Fatalf("expected MissingCredentials, got %v", err)
	}
	if hits != 0 {
		t.Errorf("expected no network call, got %d", hits)
	}
}

func TestGenerateBinaryImagePassthrough(t *testing.T) {
	img := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01, 0x02}
	var gotJobs []gatewayJob
	c, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotJobs); err != nil {
			t.Errorf("request body is not a job list: %v", err)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(img)
	})

	got, err := c.Generate(context.Background(), EndpointSDXL, map[string]any{
		"prompt": "a sea", "width": 1024, "height": 576, "num_steps": 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, img) {
		t.Errorf("image bytes altered: got %v, want %v", got, img)
	}

	if len(gotJobs) != 1 {
		t.Fatalf("expected a single-element job list, got %d", len(gotJobs))
	}
	job := gotJobs[0]
	if job.Provider != "workers-ai" {
		t.Errorf("provider = %q", job.Provider)
	}
	if job.Endpoint != EndpointSDXL {
		t.Errorf("endpoint = %q", job.Endpoint)
	}
	if job.Headers["Authorization"] != "Bearer tok" {
		t.Errorf("auth header = %q", job.Headers["Authorization"])
	}
	if job.Query["prompt"] != "a sea" {
		t.Errorf("prompt = %v", job.Query["prompt"])
	}
}

func TestGenerateBase64KeyPaths(t *testing.T) {
	img := []byte("fake image bytes")
	b64 := base64.StdEncoding.EncodeToString(img)

	bodies := map[string]string{
		"image":               fmt.Sprintf(`{"image":%q}`, b64),
		"image_base64":        fmt.Sprintf(`{"image_base64":%q}`, b64),
		"result.image":        fmt.Sprintf(`{"result":{"image":%q}}`, b64),
		"result.image_base64": fmt.Sprintf(`{"result":{"image_base64":%q}}`, b64),
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
			})
			got, err := c.Generate(context.Background(), EndpointSDXL, map[string]any{"prompt": "x"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, img) {
				t.Errorf("decoded image mismatch: %q", got)
			}
		})
	}
}

func TestGenerateUnexpectedShape(t *testing.T) {
	c, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"foo": "bar"}`))
	})

	_, err := c.Generate(context.Background(), EndpointSDXL, map[string]any{"prompt": "x"})
	var ge *Error
	if !errors.As(err, &ge) || ge.Kind != KindUnexpectedResponseShape {
		t.Fatalf("expected UnexpectedResponseShape, got %v", err)
	}
	// Diagnostics carry the content-type and the parsed key set.
	if !strings.Contains(ge.Message, "application/json") || !strings.Contains(ge.Message, "foo") {
		t.Errorf("diagnostics missing: %q", ge.Message)
	}
}

func TestGenerateTransportError(t *testing.T) {
	c, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := c.Generate(context.Background(), EndpointSDXL, map[string]any{"prompt": "x"})
	var ge *Error
	if !errors.As(err, &ge) || ge.Kind != KindTransport {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !strings.Contains(ge.Message, "502") {
		t.Errorf("status missing from message: %q", ge.Message)
	}
}

func TestExtractBase64ImageBadBase64(t *testing.T) {
	if _, ok := extractBase64Image([]byte(`{"image":"not base64!!"}`)); ok {
		t.Error("invalid base64 should not extract")
	}
}

func TestExtractBase64ImageNonJSON(t *testing.T) {
	if _, ok := extractBase64Image([]byte("<html>oops</html>")); ok {
		t.Error("non-JSON body should not extract")
	}
}
