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

import "testing"

func TestRegistryAvailability(t *testing.T) {
	tests := []struct {
		name     string
		config   RegistryConfig
		category string
		want     bool
	}{
		{"hubspot with credentials", RegistryConfig{HubSpotAvailable: true}, CategoryHubSpot, true},
		{"hubspot without credentials", RegistryConfig{}, CategoryHubSpot, false},
		{"weather with credentials", RegistryConfig{WeatherAvailable: true}, CategoryWeather, true},
		{"weather without credentials", RegistryConfig{}, CategoryWeather, false},
		{"database always available", RegistryConfig{}, CategoryDatabase, true},
		{"unknown category", RegistryConfig{}, "mystery", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry(tt.config)
			if got := registry.Available(tt.category); got != tt.want {
				t.Errorf("Available(%q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestRegistryOperations(t *testing.T) {
	registry := NewRegistry(RegistryConfig{})

	cat, ok := registry.Get(CategoryDatabase)
	if !ok {
		t.Fatal("database category missing")
	}

	want := []string{
		"create_note",
		"get_all_notes",
		"get_note_by_id",
		"update_note",
		"delete_note",
		"search_notes",
	}
	if len(cat.Operations) != len(want) {
		t.Fatalf("operations = %v, want %v", cat.Operations, want)
	}
	for i, op := range want {
		if cat.Operations[i] != op {
			t.Errorf("operation %d = %q, want %q", i, cat.Operations[i], op)
		}
	}
}

func TestRegistryCategoriesCopy(t *testing.T) {
	registry := NewRegistry(RegistryConfig{})

	categories := registry.Categories()
	if len(categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(categories))
	}

	categories[0].Name = "mutated"
	if fresh := registry.Categories(); fresh[0].Name == "mutated" {
		t.Error("Categories() exposes internal state")
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		CategoryHubSpot:  "HubSpot",
		CategoryWeather:  "Weather",
		CategoryDatabase: "Database",
		CategoryRAG:      "Knowledge Base",
		"other":          "other",
	}

	for category, want := range tests {
		if got := DisplayName(category); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", category, got, want)
		}
	}
}
