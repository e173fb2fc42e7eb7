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

// ChunkerConfig configures chunking behavior.
type ChunkerConfig struct {
	// Size is the window size in characters. Default: 1000.
	Size int `yaml:"size,omitempty"`

	// Overlap is how many trailing characters of a chunk reappear at the
	// start of the next. Must be smaller than Size. Default: 200.
	Overlap int `yaml:"overlap,omitempty"`
}

// SetDefaults applies default values.
func (c *ChunkerConfig) SetDefaults() {
	if c.Size <= 0 {
		c.Size = 1000
	}
	if c.Overlap <= 0 {
		c.Overlap = 200
	}
	if c.Overlap >= c.Size {
		c.Overlap = c.Size / 5
	}
}

// Chunker splits document content into pieces for embedding.
type Chunker interface {
	// Chunk splits content, returning chunks ordered by position.
	Chunk(content string) []Chunk
}

// OverlappingChunker implements a greedy sliding window over raw
// characters: each chunk is Size characters, and consecutive chunks
// share Overlap characters at the boundary. No semantic boundary
// awareness.
type OverlappingChunker struct {
	config ChunkerConfig
}

// NewOverlappingChunker creates a new overlapping chunker.
func NewOverlappingChunker(cfg ChunkerConfig) *OverlappingChunker {
	cfg.SetDefaults()
	return &OverlappingChunker{config: cfg}
}

// Chunk splits content into overlapping fixed-size windows.
// A 2400-character document with size 1000 / overlap 200 yields three
// chunks starting at offsets 0, 800 and 1600.
//
// Windows are measured in characters, not bytes, so multi-byte text is
// never split mid-rune.
func (c *OverlappingChunker) Chunk(content string) []Chunk {
	if content == "" {
		return nil
	}

	runes := []rune(content)
	size := c.config.Size
	stride := size - c.config.Overlap

	var chunks []Chunk
	for start := 0; ; start += stride {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, Chunk{
			Content:   string(runes[start:end]),
			StartRune: start,
			EndRune:   end,
			Index:     len(chunks),
			Total:     0, // Set after all chunks are created
		})

		if end == len(runes) {
			break
		}
	}

	total := len(chunks)
	for i := range chunks {
		chunks[i].Total = total
	}

	return chunks
}

// Config returns the chunker configuration.
func (c *OverlappingChunker) Config() ChunkerConfig {
	return c.config
}

// Ensure OverlappingChunker implements Chunker.
var _ Chunker = (*OverlappingChunker)(nil)
