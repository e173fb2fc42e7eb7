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

// Package embedders provides text embedding clients.
package embedders

import "context"

// Embedder computes embedding vectors for text.
type Embedder interface {
	// EmbedWithContext embeds a single text.
	EmbedWithContext(ctx context.Context, text string) ([]float32, error)

	// EmbedBatchWithContext embeds many texts, preserving input order.
	EmbedBatchWithContext(ctx context.Context, texts []string) ([][]float32, error)

	// GetDimension returns the embedding vector dimension.
	GetDimension() int

	// GetModelName returns the embedding model name.
	GetModelName() string

	// Close releases resources.
	Close() error
}
