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

package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kadirpekel/bizmind/pkg/observability"
	"github.com/kadirpekel/bizmind/pkg/tools"
)

// IndexState reports whether a knowledge index is currently loaded.
type IndexState interface {
	Loaded() bool
}

// Assistant is the query orchestrator. All state is carried here, not
// in package globals, so independent instances can coexist in one
// process.
type Assistant struct {
	registry    *tools.Registry
	selector    *tools.Selector
	index       IndexState
	gatherer    *Gatherer
	synthesizer *Synthesizer
	log         *ConversationLog
}

// Config wires an Assistant's collaborators. Store must satisfy both
// the search and index-state views of the knowledge store.
type Config struct {
	Registry *tools.Registry
	Store    interface {
		Searcher
		IndexState
	}
	Synthesizer *Synthesizer
}

// New creates an assistant.
func New(cfg Config) *Assistant {
	return &Assistant{
		registry:    cfg.Registry,
		selector:    tools.NewSelector(cfg.Registry),
		index:       cfg.Store,
		gatherer:    NewGatherer(cfg.Store),
		synthesizer: cfg.Synthesizer,
		log:         NewConversationLog(),
	}
}

// Registry exposes the tool registry for read-only inspection.
func (a *Assistant) Registry() *tools.Registry {
	return a.registry
}

// ProcessQuery runs the full pipeline for one query: select tools,
// gather per-category results, synthesize an answer, log the exchange.
//
// Every query terminates in a QueryResult. Internal failures degrade to
// an apologetic answer naming the error; nothing propagates.
func (a *Assistant) ProcessQuery(ctx context.Context, query string) *QueryResult {
	ctx, span := observability.GetTracer("bizmind.assistant").Start(ctx, observability.SpanQuery)
	defer span.End()

	slog.Info("Processing query", "query", query)
	start := time.Now()

	indexLoaded := a.index != nil && a.index.Loaded()
	selected := a.selector.Select(ctx, query, indexLoaded)
	span.SetAttributes(attribute.StringSlice(observability.AttrToolsUsed, selected))

	info := a.gatherer.Gather(ctx, query, selected)

	response, err := a.synthesizer.Synthesize(ctx, query, info)
	degraded := err != nil
	if degraded {
		slog.Error("LLM synthesis error", "error", err)
		response = fmt.Sprintf("I encountered an error processing your request: %s", err)
	}

	a.log.Append(ConversationRecord{
		Query:     query,
		Response:  response,
		ToolsUsed: selected,
		Timestamp: time.Now(),
	})

	elapsed := time.Since(start)
	observability.GetGlobalMetrics().RecordQuery(ctx, elapsed, degraded)
	slog.Info("Query processed", "duration", elapsed)

	return &QueryResult{
		Query:    query,
		Response: response,
		Metadata: QueryMetadata{
			ToolsUsed:      selected,
			ProcessingTime: elapsed,
			Sources:        ExtractSources(info),
		},
	}
}

// GetConversationHistory returns the exchanges so far, oldest first.
func (a *Assistant) GetConversationHistory() []ConversationRecord {
	return a.log.Records()
}

// ClearHistory empties the conversation log.
func (a *Assistant) ClearHistory() {
	a.log.Clear()
}
