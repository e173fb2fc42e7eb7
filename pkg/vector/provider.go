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

// Package vector provides vector store backends for similarity search.
//
// Vectors are computed externally (see pkg/embedders); providers only
// store and search pre-computed embeddings.
package vector

import "context"

// Result is a single similarity search hit.
type Result struct {
	ID       string
	Score    float32
	Content  string
	Metadata map[string]any
}

// Doc is a document to upsert with its pre-computed embedding.
type Doc struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]any
}

// Provider stores embeddings and answers similarity queries.
type Provider interface {
	// Upsert adds or updates a single document.
	Upsert(ctx context.Context, collection string, doc Doc) error

	// UpsertBatch adds or updates many documents, persisting once.
	UpsertBatch(ctx context.Context, collection string, docs []Doc) error

	// Search returns the topK most similar documents.
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]Result, error)

	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// DeleteCollection removes a collection and all its documents.
	DeleteCollection(ctx context.Context, collection string) error

	// Name returns the provider name.
	Name() string

	// Close persists state and releases resources.
	Close() error
}
