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

package tools

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kadirpekel/bizmind/pkg/observability"
)

// categoryKeywords is the routing table: a query is routed to a category
// when any keyword is a case-insensitive substring of the query.
var categoryKeywords = map[string][]string{
	CategoryHubSpot: {
		"contact", "customer", "deal", "crm", "company",
		"lead", "prospect", "account", "sales",
	},
	CategoryWeather: {
		"weather", "temperature", "forecast", "climate",
		"location", "city", "region",
	},
	CategoryDatabase: {
		"note", "save", "log", "record", "history",
		"previous", "past", "stored",
	},
}

// Selector maps a free-text query to the tool categories to consult.
type Selector struct {
	registry *Registry
}

// NewSelector creates a selector over a registry.
func NewSelector(registry *Registry) *Selector {
	return &Selector{registry: registry}
}

// matchesKeywords reports whether any keyword for the category occurs in
// the lowered query.
func matchesKeywords(category, loweredQuery string) bool {
	for _, keyword := range categoryKeywords[category] {
		if strings.Contains(loweredQuery, keyword) {
			return true
		}
	}
	return false
}

// Select returns the ordered, duplicate-free categories for a query.
//
// Output order is fixed: rag, hubspot, weather, database. rag is
// selected whenever a knowledge index is loaded. hubspot and weather
// require a keyword match and registry availability. database requires
// only a keyword match and ignores its availability flag: note and
// history queries always reach local storage.
func (s *Selector) Select(ctx context.Context, query string, indexLoaded bool) []string {
	_, span := observability.GetTracer("bizmind.tools").Start(ctx, observability.SpanSelect)
	defer span.End()

	loweredQuery := strings.ToLower(query)

	selected := []string{}

	if indexLoaded {
		selected = append(selected, CategoryRAG)
	}

	if matchesKeywords(CategoryHubSpot, loweredQuery) && s.registry.Available(CategoryHubSpot) {
		selected = append(selected, CategoryHubSpot)
	}

	if matchesKeywords(CategoryWeather, loweredQuery) && s.registry.Available(CategoryWeather) {
		selected = append(selected, CategoryWeather)
	}

	if matchesKeywords(CategoryDatabase, loweredQuery) {
		selected = append(selected, CategoryDatabase)
	}

	slog.Info("Selected tools for query", "tools", selected)
	return selected
}
