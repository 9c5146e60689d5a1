package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// BackendConfig describes one generation backend from api_config.json.
type BackendConfig struct {
	Key     string `json:"key"`      // API credential
	BaseURL string `json:"base_url"` // OpenAI-compatible endpoint
	Models  string `json:"models"`   // model identifier to request
}

// Backends maps backend name to its configuration. Loaded once at
// startup and read-only thereafter.
type Backends map[string]BackendConfig

// LoadBackends reads the backend registry from a JSON file.
func LoadBackends(path string) (Backends, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backend registry: %w", err)
	}
	var b Backends
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse backend registry %s: %w", path, err)
	}
	return b, nil
}

// Get looks up a backend by name. A missing entry is a loud error, never
// a zero value.
func (b Backends) Get(name string) (BackendConfig, error) {
	cfg, ok := b[name]
	if !ok {
		return BackendConfig{}, fmt.Errorf("backend %q not found in registry", name)
	}
	return cfg, nil
}
