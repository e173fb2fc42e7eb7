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

package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/bizmind/pkg/embedders"
	"github.com/kadirpekel/bizmind/pkg/observability"
	"github.com/kadirpekel/bizmind/pkg/vector"
)

// DefaultTopK is the number of results per similarity search.
const DefaultTopK = 3

// unknownSource is the citation identifier for hits without provenance.
const unknownSource = "unknown"

// KnowledgeStore ties together document discovery, chunking, embedding
// and the vector index.
//
// Rebuilding the index and searching it share a single-writer/many-reader
// lock; the loaded flag flips only after a successful ingestion run, so
// prior state survives failed or empty runs untouched.
type KnowledgeStore struct {
	embedder   embedders.Embedder
	provider   vector.Provider
	chunker    Chunker
	collection string
	topK       int

	mu     sync.RWMutex
	loaded bool
}

// StoreConfig configures a KnowledgeStore.
type StoreConfig struct {
	Collection string
	TopK       int
	Chunker    ChunkerConfig
}

// NewKnowledgeStore creates a knowledge store.
func NewKnowledgeStore(embedder embedders.Embedder, provider vector.Provider, cfg StoreConfig) *KnowledgeStore {
	if cfg.Collection == "" {
		cfg.Collection = "knowledge"
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}

	return &KnowledgeStore{
		embedder:   embedder,
		provider:   provider,
		chunker:    NewOverlappingChunker(cfg.Chunker),
		collection: cfg.Collection,
		topK:       cfg.TopK,
	}
}

// Loaded reports whether an index has been successfully built or
// recovered during this store's lifetime.
func (s *KnowledgeStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// MarkLoaded flags a previously persisted index as usable without
// re-ingesting. Used at startup when the vector store already holds
// documents.
func (s *KnowledgeStore) MarkLoaded(ctx context.Context) bool {
	count, err := s.provider.Count(ctx, s.collection)
	if err != nil || count == 0 {
		return false
	}

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()

	slog.Info("Recovered persisted knowledge index", "documents", count)
	return true
}

// LoadDirectory ingests every text document under dir into the vector
// index: recursive discovery, overlapping chunking, batch embedding,
// upsert.
//
// Discovery and per-file read errors are logged and treated as missing
// documents; they never fail the run. Zero documents is a warning, not an
// error, and leaves any prior index untouched. Embedding or indexing
// failures are returned to the caller.
func (s *KnowledgeStore) LoadDirectory(ctx context.Context, dir string) (*IngestStats, error) {
	tracer := observability.GetTracer("bizmind.rag")
	ctx, span := tracer.Start(ctx, observability.SpanRAGIngest,
		trace.WithAttributes(attribute.String("rag.directory", dir)),
	)
	defer span.End()

	slog.Info("Loading documents", "directory", dir)

	source := NewDirectorySource(dir)
	docChan, errChan := source.DiscoverDocuments(ctx)

	// Drain discovery errors concurrently; each one degrades to a
	// missing document rather than failing the run.
	go func() {
		for err := range errChan {
			slog.Error("Error loading document", "error", err)
		}
	}()

	var texts []string
	var docs []vector.Doc

	documents := 0
	for doc := range docChan {
		documents++
		for _, chunk := range s.chunker.Chunk(doc.Content) {
			texts = append(texts, chunk.Content)
			docs = append(docs, vector.Doc{
				ID:      fmt.Sprintf("%s#%d", doc.SourcePath, chunk.Index),
				Content: chunk.Content,
				Metadata: map[string]any{
					"source":       doc.SourcePath,
					"chunk_index":  chunk.Index,
					"total_chunks": chunk.Total,
				},
			})
		}
	}

	if documents == 0 {
		slog.Warn("No documents found", "directory", dir)
		return &IngestStats{}, nil
	}

	slog.Info("Created chunks from documents", "chunks", len(docs), "documents", documents)

	vectors, err := s.embedder.EmbedBatchWithContext(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(docs))
	}
	for i := range docs {
		docs[i].Vector = vectors[i]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.provider.UpsertBatch(ctx, s.collection, docs); err != nil {
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}
	s.loaded = true

	stats := &IngestStats{Documents: documents, Chunks: len(docs)}
	observability.GetGlobalMetrics().RecordIngest(ctx, stats.Documents, stats.Chunks)
	slog.Info("Knowledge base loaded successfully", "documents", documents, "chunks", len(docs))

	return stats, nil
}

// Search runs a top-k similarity search against the index.
// Returns an empty slice when no index is loaded.
func (s *KnowledgeStore) Search(ctx context.Context, query string) ([]RetrievedDocument, error) {
	return s.SearchTopK(ctx, query, s.topK)
}

// SearchTopK runs a similarity search with an explicit result count.
func (s *KnowledgeStore) SearchTopK(ctx context.Context, query string, topK int) ([]RetrievedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		slog.Warn("Vector store not initialized")
		return nil, nil
	}

	tracer := observability.GetTracer("bizmind.rag")
	ctx, span := tracer.Start(ctx, observability.SpanRAGSearch,
		trace.WithAttributes(attribute.Int(observability.AttrTopK, topK)),
	)
	defer span.End()

	queryVector, err := s.embedder.EmbedWithContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.provider.Search(ctx, s.collection, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	retrieved := make([]RetrievedDocument, 0, len(results))
	for _, r := range results {
		source := unknownSource
		if v, ok := r.Metadata["source"].(string); ok && v != "" {
			source = v
		}
		retrieved = append(retrieved, RetrievedDocument{
			Content:  r.Content,
			Metadata: r.Metadata,
			Source:   source,
		})
	}

	slog.Info("Retrieved documents from knowledge base", "count", len(retrieved))
	return retrieved, nil
}

// Close releases the underlying vector store.
func (s *KnowledgeStore) Close() error {
	return s.provider.Close()
}
