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

// Package tools describes the external tool categories the assistant can
// consult and selects them per query.
//
// Categories are fixed at startup from credentials in the configuration;
// absent credentials mark a category unavailable, never error.
package tools

import "log/slog"

// Category names. CategoryRAG is not a registry entry; it is selected
// whenever a knowledge index is loaded.
const (
	CategoryRAG      = "rag"
	CategoryHubSpot  = "hubspot"
	CategoryWeather  = "weather"
	CategoryDatabase = "database"
)

// CategoryDescriptor describes one tool category. Immutable after
// registry construction.
type CategoryDescriptor struct {
	// Name is the category identifier.
	Name string `json:"name"`

	// Available reports whether the category can be consulted.
	Available bool `json:"available"`

	// Operations lists the supported operation names, in order.
	// Informational only; the query pipeline does not invoke them.
	Operations []string `json:"operations"`
}

// DisplayName maps category identifiers to their user-facing names.
func DisplayName(category string) string {
	switch category {
	case CategoryHubSpot:
		return "HubSpot"
	case CategoryWeather:
		return "Weather"
	case CategoryDatabase:
		return "Database"
	case CategoryRAG:
		return "Knowledge Base"
	default:
		return category
	}
}

// RegistryConfig carries the credential presence flags that gate
// category availability.
type RegistryConfig struct {
	HubSpotAvailable bool
	WeatherAvailable bool
}

// Registry is the static set of tool categories. No mutation after
// construction; lookups are read-only.
type Registry struct {
	categories []CategoryDescriptor
	byName     map[string]CategoryDescriptor
}

// NewRegistry builds the registry from credential presence.
// The database category is always available (local storage).
func NewRegistry(cfg RegistryConfig) *Registry {
	categories := []CategoryDescriptor{
		{
			Name:      CategoryHubSpot,
			Available: cfg.HubSpotAvailable,
			Operations: []string{
				"create_contact",
				"search_contacts",
				"get_contact",
				"update_contact",
				"create_deal",
			},
		},
		{
			Name:      CategoryWeather,
			Available: cfg.WeatherAvailable,
			Operations: []string{
				"get_current_weather",
				"get_forecast",
				"get_weather_alerts",
				"compare_locations",
				"get_weather_by_coords",
			},
		},
		{
			Name:      CategoryDatabase,
			Available: true,
			Operations: []string{
				"create_note",
				"get_all_notes",
				"get_note_by_id",
				"update_note",
				"delete_note",
				"search_notes",
			},
		},
	}

	byName := make(map[string]CategoryDescriptor, len(categories))
	var available []string
	for _, cat := range categories {
		byName[cat.Name] = cat
		if cat.Available {
			available = append(available, cat.Name)
		}
	}

	slog.Info("Available tool categories", "categories", available)

	return &Registry{
		categories: categories,
		byName:     byName,
	}
}

// Get returns the descriptor for a category.
func (r *Registry) Get(name string) (CategoryDescriptor, bool) {
	cat, ok := r.byName[name]
	return cat, ok
}

// Available reports whether a category is usable. Unknown categories
// are unavailable.
func (r *Registry) Available(name string) bool {
	cat, ok := r.byName[name]
	return ok && cat.Available
}

// Categories returns all descriptors in registration order.
func (r *Registry) Categories() []CategoryDescriptor {
	out := make([]CategoryDescriptor, len(r.categories))
	copy(out, r.categories)
	return out
}
