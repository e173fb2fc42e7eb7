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

package main

import (
	"fmt"
	"log/slog"

	"github.com/kadirpekel/bizmind/pkg/assistant"
	"github.com/kadirpekel/bizmind/pkg/config"
	"github.com/kadirpekel/bizmind/pkg/embedders"
	"github.com/kadirpekel/bizmind/pkg/llms"
	"github.com/kadirpekel/bizmind/pkg/notes"
	"github.com/kadirpekel/bizmind/pkg/rag"
	"github.com/kadirpekel/bizmind/pkg/tools"
	"github.com/kadirpekel/bizmind/pkg/vector"
)

// app holds the wired components for one assistant process.
type app struct {
	assistant *assistant.Assistant
	store     *rag.KnowledgeStore
	notes     *notes.Store

	closers []func() error
}

// buildApp constructs the component graph from configuration.
func buildApp(cfg *config.Config) (*app, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	a := &app{}

	provider, err := vector.NewChromemProvider(vector.ChromemConfig{
		PersistPath: cfg.VectorStorePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	a.closers = append(a.closers, provider.Close)

	embedder, err := embedders.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	a.closers = append(a.closers, embedder.Close)

	a.store = rag.NewKnowledgeStore(embedder, provider, rag.StoreConfig{
		Collection: cfg.RAG.Collection,
		TopK:       cfg.RAG.TopK,
		Chunker: rag.ChunkerConfig{
			Size:    cfg.RAG.ChunkSize,
			Overlap: cfg.RAG.ChunkOverlap,
		},
	})

	llm, err := llms.NewOpenAIProvider(cfg.OpenAIAPIKey, *cfg.Temperature, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	a.closers = append(a.closers, llm.Close)

	notesStore, err := notes.Open(cfg.NotesDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open notes store: %w", err)
	}
	a.notes = notesStore
	a.closers = append(a.closers, notesStore.Close)

	registry := tools.NewRegistry(tools.RegistryConfig{
		HubSpotAvailable: cfg.HubSpotToken != "",
		WeatherAvailable: cfg.WeatherAPIKey != "",
	})

	a.assistant = assistant.New(assistant.Config{
		Registry:    registry,
		Store:       a.store,
		Synthesizer: assistant.NewSynthesizer(llm),
	})

	return a, nil
}

// Close releases all held resources, last-opened first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("Error during shutdown", "error", err)
		}
	}
}
