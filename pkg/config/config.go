// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the assistant configuration.
//
// Configuration is read once at startup: environment variables first
// (optionally populated from .env files), then an optional YAML file that
// may reference environment variables with ${VAR} / ${VAR:-default}
// syntax. Missing integration credentials are not errors; they only mark
// the corresponding tool category unavailable.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a bizmind instance.
type Config struct {
	// OpenAIAPIKey authenticates both the embedder and the LLM.
	OpenAIAPIKey string `yaml:"openai_api_key,omitempty"`

	// VectorStorePath is the persistence directory for the embedded
	// vector database.
	VectorStorePath string `yaml:"vector_store_path,omitempty"`

	// Temperature for LLM generation. Nil means unset; an explicit zero
	// is honored (deterministic generation).
	Temperature *float64 `yaml:"temperature,omitempty"`

	// HubSpotToken gates the hubspot tool category.
	HubSpotToken string `yaml:"hubspot_token,omitempty"`

	// WeatherAPIKey gates the weather tool category.
	WeatherAPIKey string `yaml:"weather_api_key,omitempty"`

	// NotesDBPath is the SQLite database file for the notes store.
	NotesDBPath string `yaml:"notes_db_path,omitempty"`

	// LogLevel: debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	LLM      LLMConfig      `yaml:"llm,omitempty"`
	RAG      RAGConfig      `yaml:"rag,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`

	Observability ObservabilityConfig `yaml:"observability,omitempty"`
}

// EmbedderConfig configures the embedding client.
type EmbedderConfig struct {
	// Model name. Default: text-embedding-3-small.
	Model string `yaml:"model,omitempty"`

	// Host is the API base URL. Default: https://api.openai.com/v1.
	Host string `yaml:"host,omitempty"`

	// Dimension of the embedding vectors. Derived from the model if zero.
	Dimension int `yaml:"dimension,omitempty"`

	// BatchSize for batch embedding requests. Default: 100.
	BatchSize int `yaml:"batch_size,omitempty"`

	// Timeout in seconds per request. Default: 30.
	Timeout int `yaml:"timeout,omitempty"`
}

// LLMConfig configures the chat completion client.
type LLMConfig struct {
	// Model name. Default: gpt-4-turbo-preview.
	Model string `yaml:"model,omitempty"`

	// Host is the API base URL. Default: https://api.openai.com/v1.
	Host string `yaml:"host,omitempty"`

	// MaxTokens for generation. Default: 1000.
	MaxTokens int `yaml:"max_tokens,omitempty"`

	// Timeout in seconds per request. Default: 60.
	Timeout int `yaml:"timeout,omitempty"`
}

// RAGConfig configures document ingestion and retrieval.
type RAGConfig struct {
	// ChunkSize is the chunk window in characters. Default: 1000.
	ChunkSize int `yaml:"chunk_size,omitempty"`

	// ChunkOverlap is the window overlap in characters. Default: 200.
	ChunkOverlap int `yaml:"chunk_overlap,omitempty"`

	// TopK results per similarity search. Default: 3.
	TopK int `yaml:"top_k,omitempty"`

	// Collection name in the vector store. Default: knowledge.
	Collection string `yaml:"collection,omitempty"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// ObservabilityConfig enables tracing and metrics.
type ObservabilityConfig struct {
	TracingEnabled bool   `yaml:"tracing_enabled,omitempty"`
	OTLPEndpoint   string `yaml:"otlp_endpoint,omitempty"`
	MetricsEnabled bool   `yaml:"metrics_enabled,omitempty"`
}

// Address returns the host:port listen address.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FromEnv builds a Config from the process environment, applying defaults.
// It never fails: absent credentials simply leave fields empty.
func FromEnv() *Config {
	cfg := &Config{
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		VectorStorePath: os.Getenv("CHROMA_DB_PATH"),
		HubSpotToken:    os.Getenv("HUBSPOT_ACCESS_TOKEN"),
		WeatherAPIKey:   os.Getenv("WEATHER_API_KEY"),
		NotesDBPath:     os.Getenv("NOTES_DB_PATH"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
	}

	if t := os.Getenv("TEMPERATURE"); t != "" {
		if val, err := strconv.ParseFloat(t, 64); err == nil {
			cfg.Temperature = &val
		}
	}

	cfg.SetDefaults()
	return cfg
}

// LoadFile reads a YAML config file over an env-derived base config.
// Values present in the file win; ${VAR} references are expanded from
// the environment before parsing.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := FromEnv()
	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.SetDefaults()
	return cfg, nil
}

// SetDefaults applies default values to unset fields.
func (c *Config) SetDefaults() {
	if c.VectorStorePath == "" {
		c.VectorStorePath = "./data/chroma_db"
	}
	if c.Temperature == nil {
		temperature := 0.7
		c.Temperature = &temperature
	}
	if c.NotesDBPath == "" {
		c.NotesDBPath = "./data/notes.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Embedder.Model == "" {
		c.Embedder.Model = "text-embedding-3-small"
	}
	if c.Embedder.Host == "" {
		c.Embedder.Host = "https://api.openai.com/v1"
	}
	if c.Embedder.BatchSize <= 0 {
		c.Embedder.BatchSize = 100
	}
	if c.Embedder.Timeout <= 0 {
		c.Embedder.Timeout = 30
	}

	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4-turbo-preview"
	}
	if c.LLM.Host == "" {
		c.LLM.Host = "https://api.openai.com/v1"
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 1000
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 60
	}

	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = 1000
	}
	if c.RAG.ChunkOverlap < 0 {
		c.RAG.ChunkOverlap = 0
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = 200
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = 3
	}
	if c.RAG.Collection == "" {
		c.RAG.Collection = "knowledge"
	}

	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}

	if c.Observability.OTLPEndpoint == "" {
		c.Observability.OTLPEndpoint = "localhost:4317"
	}
}
