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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.VectorStorePath != "./data/chroma_db" {
		t.Errorf("vector store path = %q", cfg.VectorStorePath)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.7 {
		t.Errorf("temperature = %v", cfg.Temperature)
	}
	if cfg.RAG.ChunkSize != 1000 || cfg.RAG.ChunkOverlap != 200 {
		t.Errorf("chunking defaults = %d/%d", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.TopK != 3 {
		t.Errorf("top_k = %d", cfg.RAG.TopK)
	}
	if cfg.LLM.Model != "gpt-4-turbo-preview" {
		t.Errorf("llm model = %q", cfg.LLM.Model)
	}
	if cfg.Embedder.Model != "text-embedding-3-small" {
		t.Errorf("embedder model = %q", cfg.Embedder.Model)
	}
	if cfg.Server.Address() != "127.0.0.1:8080" {
		t.Errorf("server address = %q", cfg.Server.Address())
	}
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	temperature := 0.2
	cfg := &Config{Temperature: &temperature}
	cfg.RAG.ChunkSize = 500
	cfg.SetDefaults()

	if *cfg.Temperature != 0.2 {
		t.Errorf("temperature overwritten: %v", *cfg.Temperature)
	}
	if cfg.RAG.ChunkSize != 500 {
		t.Errorf("chunk size overwritten: %d", cfg.RAG.ChunkSize)
	}
}

func TestSetDefaultsKeepsZeroTemperature(t *testing.T) {
	// Zero is a deliberate operator choice (deterministic generation),
	// not an unset field.
	temperature := 0.0
	cfg := &Config{Temperature: &temperature}
	cfg.SetDefaults()

	if *cfg.Temperature != 0 {
		t.Errorf("explicit zero temperature overwritten: %v", *cfg.Temperature)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("HUBSPOT_ACCESS_TOKEN", "hs-token")
	t.Setenv("WEATHER_API_KEY", "")
	t.Setenv("TEMPERATURE", "0.3")
	t.Setenv("CHROMA_DB_PATH", "/tmp/vectors")

	cfg := FromEnv()

	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.OpenAIAPIKey)
	}
	if cfg.HubSpotToken != "hs-token" {
		t.Errorf("hubspot token = %q", cfg.HubSpotToken)
	}
	if cfg.WeatherAPIKey != "" {
		t.Errorf("weather key = %q, want empty", cfg.WeatherAPIKey)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.3 {
		t.Errorf("temperature = %v", cfg.Temperature)
	}
	if cfg.VectorStorePath != "/tmp/vectors" {
		t.Errorf("vector store path = %q", cfg.VectorStorePath)
	}
}

func TestFromEnvInvalidTemperature(t *testing.T) {
	t.Setenv("TEMPERATURE", "hot")

	cfg := FromEnv()
	if cfg.Temperature == nil || *cfg.Temperature != 0.7 {
		t.Errorf("temperature = %v, want default 0.7", cfg.Temperature)
	}
}

func TestFromEnvZeroTemperature(t *testing.T) {
	t.Setenv("TEMPERATURE", "0")

	cfg := FromEnv()
	if cfg.Temperature == nil || *cfg.Temperature != 0 {
		t.Errorf("temperature = %v, want explicit 0", cfg.Temperature)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("TEST_HUBSPOT_TOKEN", "from-env")

	content := `
temperature: 0.5
hubspot_token: ${TEST_HUBSPOT_TOKEN}
notes_db_path: ${UNSET_NOTES_PATH:-/tmp/fallback.db}
rag:
  top_k: 5
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Temperature == nil || *cfg.Temperature != 0.5 {
		t.Errorf("temperature = %v", cfg.Temperature)
	}
	if cfg.HubSpotToken != "from-env" {
		t.Errorf("hubspot token = %q", cfg.HubSpotToken)
	}
	if cfg.NotesDBPath != "/tmp/fallback.db" {
		t.Errorf("notes path = %q", cfg.NotesDBPath)
	}
	if cfg.RAG.TopK != 5 {
		t.Errorf("top_k = %d", cfg.RAG.TopK)
	}
	// Unset fields still get defaults.
	if cfg.RAG.ChunkSize != 1000 {
		t.Errorf("chunk size = %d", cfg.RAG.ChunkSize)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("EXPAND_TEST_VAR", "value")

	tests := []struct {
		in   string
		want string
	}{
		{"${EXPAND_TEST_VAR}", "value"},
		{"${EXPAND_TEST_UNSET}", ""},
		{"${EXPAND_TEST_UNSET:-fallback}", "fallback"},
		{"${EXPAND_TEST_VAR:-fallback}", "value"},
		{"no references", "no references"},
	}

	for _, tt := range tests {
		if got := expandEnvVars(tt.in); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
