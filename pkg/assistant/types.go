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

// Package assistant orchestrates the query pipeline: tool selection,
// multi-source gathering, LLM synthesis and conversation logging.
package assistant

import (
	"time"

	"github.com/kadirpekel/bizmind/pkg/rag"
)

// ToolStatus is the stub payload returned for tool categories that have
// no live handler in the gather path yet. Placeholder contract: either
// keep this shape when real handlers land, or drop the category.
type ToolStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// GatheredInfo is the per-query collection of raw results, keyed by
// category. Discarded after synthesis; only the derived response is
// logged.
type GatheredInfo struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
	ToolsUsed []string  `json:"tools_used"`

	// RAG holds knowledge-base hits in retrieval order; nil when rag
	// was not selected or retrieval degraded to empty.
	RAG []rag.RetrievedDocument `json:"rag,omitempty"`

	// Tools maps the stub categories (hubspot, weather, database) to
	// their status payloads.
	Tools map[string]ToolStatus `json:"tools,omitempty"`
}

// ConversationRecord is one completed query/response exchange.
type ConversationRecord struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	ToolsUsed []string  `json:"tools_used"`
	Timestamp time.Time `json:"timestamp"`
}

// QueryMetadata accompanies every response.
type QueryMetadata struct {
	ToolsUsed      []string      `json:"tools_used"`
	ProcessingTime time.Duration `json:"processing_time"`

	// Sources lists distinct knowledge-base citations in first-seen
	// order.
	Sources []string `json:"sources"`
}

// QueryResult is the answer returned to the caller.
type QueryResult struct {
	Query    string        `json:"query"`
	Response string        `json:"response"`
	Metadata QueryMetadata `json:"metadata"`
}
