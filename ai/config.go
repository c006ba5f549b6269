// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig indicates an incomplete embedding configuration.
var ErrInvalidConfig = errors.New("invalid embedding config")

// DefaultTimeout bounds a single request to the embedding service.
const DefaultTimeout = 60 * time.Second

// Config describes how to reach the service that embeds song documents.
type Config struct {
	// Host is the base URL of an OpenAI-compatible API,
	// e.g. "http://localhost:11434/v1" for Ollama.
	Host string

	// Model names the embedding model, e.g. "embeddinggemma".
	Model string

	// APIKey is sent as the bearer token. Local servers accept any value.
	APIKey string

	// Timeout is the HTTP client timeout. Zero means DefaultTimeout.
	Timeout time.Duration
}

// ConfigOption mutates a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// DefaultConfig targets a local Ollama server.
func DefaultConfig() *Config {
	return &Config{
		Host:    "http://localhost:11434/v1",
		Model:   "embeddinggemma",
		APIKey:  "none",
		Timeout: DefaultTimeout,
	}
}

// NewConfig applies opts on top of DefaultConfig.
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434"),
//	    WithModel("nomic-embed-text"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize trims the settings, appends the /v1 suffix OpenAI-compatible
// servers (Ollama, LocalAI, vLLM) expect, and fills in the API key and
// timeout defaults.
func (c *Config) Normalize() {
	c.Host = strings.TrimSpace(c.Host)
	c.Model = strings.TrimSpace(c.Model)
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.APIKey == "" {
		c.APIKey = "none"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate normalizes c and reports missing settings as ErrInvalidConfig.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	return nil
}
