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

	"github.com/kadirpekel/bizmind/pkg/observability"
	"github.com/kadirpekel/bizmind/pkg/rag"
	"github.com/kadirpekel/bizmind/pkg/tools"
)

// Searcher is the slice of the knowledge store the gatherer needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]rag.RetrievedDocument, error)
}

// Gatherer fans a query out to the selected categories and collects
// their raw results.
type Gatherer struct {
	store Searcher
}

// NewGatherer creates a gatherer over a knowledge searcher.
func NewGatherer(store Searcher) *Gatherer {
	return &Gatherer{store: store}
}

// stubCategories are visited in this order; each selected one gets a
// static status payload until a live handler replaces it.
var stubCategories = []string{
	tools.CategoryHubSpot,
	tools.CategoryWeather,
	tools.CategoryDatabase,
}

// Gather collects results per selected category, sequentially.
//
// A knowledge-base search failure degrades to an empty result list for
// the rag category; it never fails the query.
func (g *Gatherer) Gather(ctx context.Context, query string, selected []string) *GatheredInfo {
	ctx, span := observability.GetTracer("bizmind.assistant").Start(ctx, observability.SpanGather)
	defer span.End()

	info := &GatheredInfo{
		Query:     query,
		Timestamp: time.Now(),
		ToolsUsed: selected,
		Tools:     make(map[string]ToolStatus),
	}

	selectedSet := make(map[string]bool, len(selected))
	for _, category := range selected {
		selectedSet[category] = true
	}

	if selectedSet[tools.CategoryRAG] && g.store != nil {
		docs, err := g.store.Search(ctx, query)
		if err != nil {
			slog.Error("RAG retrieval error", "error", err)
			docs = nil
		}
		info.RAG = docs
	}

	for _, category := range stubCategories {
		if !selectedSet[category] {
			continue
		}
		info.Tools[category] = ToolStatus{
			Status:  "available",
			Message: fmt.Sprintf("%s integration ready", tools.DisplayName(category)),
		}
	}

	return info
}

// ExtractSources returns the distinct knowledge-base citations in
// first-seen order.
func ExtractSources(info *GatheredInfo) []string {
	sources := []string{}
	seen := make(map[string]bool)

	for _, doc := range info.RAG {
		if seen[doc.Source] {
			continue
		}
		seen[doc.Source] = true
		sources = append(sources, doc.Source)
	}

	return sources
}
