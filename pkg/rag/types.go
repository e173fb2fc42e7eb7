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

// Package rag implements the knowledge store: document discovery,
// chunking, embedding, indexing, and similarity retrieval.
package rag

// Document is a raw text document discovered by a data source.
type Document struct {
	// ID is the absolute file path.
	ID string

	// Content is the full document text.
	Content string

	// SourcePath is the path relative to the ingestion root; used as the
	// citation identifier.
	SourcePath string

	// Size in bytes.
	Size int64
}

// Chunk is one window of a split document.
type Chunk struct {
	// Content is the window text.
	Content string

	// StartRune and EndRune locate the window in the original content,
	// measured in characters. EndRune is exclusive.
	StartRune int
	EndRune   int

	// Index is the zero-based position of this chunk.
	Index int

	// Total is the number of chunks produced from the document.
	Total int
}

// RetrievedDocument is a similarity search hit returned to the gatherer.
type RetrievedDocument struct {
	// Content is the chunk text.
	Content string `json:"content"`

	// Metadata carries chunk provenance (source path, chunk index).
	Metadata map[string]any `json:"metadata"`

	// Source is the citation identifier; "unknown" when absent.
	Source string `json:"source"`
}

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}
