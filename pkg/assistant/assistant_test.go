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
	"reflect"
	"strings"
	"testing"

	"github.com/kadirpekel/bizmind/pkg/llms"
	"github.com/kadirpekel/bizmind/pkg/rag"
	"github.com/kadirpekel/bizmind/pkg/tools"
)

// fakeLLM records the submitted messages and returns a fixed answer.
type fakeLLM struct {
	response string
	err      error
	messages []llms.Message
}

func (f *fakeLLM) Generate(ctx context.Context, messages []llms.Message) (string, int, error) {
	f.messages = messages
	if f.err != nil {
		return "", 0, f.err
	}
	return f.response, 42, nil
}

func (f *fakeLLM) GetModelName() string { return "fake-model" }
func (f *fakeLLM) Close() error         { return nil }

// fakeStore serves canned knowledge-base results.
type fakeStore struct {
	docs   []rag.RetrievedDocument
	err    error
	loaded bool
}

func (f *fakeStore) Search(ctx context.Context, query string) ([]rag.RetrievedDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeStore) Loaded() bool { return f.loaded }

func docWithSource(source string) rag.RetrievedDocument {
	return rag.RetrievedDocument{
		Content: "content from " + source,
		Source:  source,
	}
}

func newTestAssistant(store *fakeStore, llm *fakeLLM) *Assistant {
	registry := tools.NewRegistry(tools.RegistryConfig{
		HubSpotAvailable: true,
		WeatherAvailable: true,
	})
	return New(Config{
		Registry:    registry,
		Store:       store,
		Synthesizer: NewSynthesizer(llm),
	})
}

func TestProcessQueryDeduplicatesSources(t *testing.T) {
	store := &fakeStore{
		loaded: true,
		docs: []rag.RetrievedDocument{
			docWithSource("a.txt"),
			docWithSource("b.txt"),
			docWithSource("a.txt"),
			docWithSource("c.txt"),
		},
	}
	asst := newTestAssistant(store, &fakeLLM{response: "answer"})

	result := asst.ProcessQuery(context.Background(), "what do we know?")

	want := []string{"a.txt", "b.txt", "c.txt"}
	if !reflect.DeepEqual(result.Metadata.Sources, want) {
		t.Errorf("sources = %v, want %v", result.Metadata.Sources, want)
	}
}

func TestProcessQueryResult(t *testing.T) {
	store := &fakeStore{loaded: true, docs: []rag.RetrievedDocument{docWithSource("kb.txt")}}
	asst := newTestAssistant(store, &fakeLLM{response: "the synthesized answer"})

	result := asst.ProcessQuery(context.Background(), "summarize the knowledge base")

	if result.Query != "summarize the knowledge base" {
		t.Errorf("query = %q", result.Query)
	}
	if result.Response != "the synthesized answer" {
		t.Errorf("response = %q", result.Response)
	}
	if !reflect.DeepEqual(result.Metadata.ToolsUsed, []string{tools.CategoryRAG}) {
		t.Errorf("tools_used = %v", result.Metadata.ToolsUsed)
	}
	if result.Metadata.ProcessingTime < 0 {
		t.Errorf("processing time = %v", result.Metadata.ProcessingTime)
	}
}

func TestProcessQueryDegradedSynthesis(t *testing.T) {
	store := &fakeStore{loaded: true, docs: []rag.RetrievedDocument{docWithSource("kb.txt")}}
	asst := newTestAssistant(store, &fakeLLM{err: fmt.Errorf("model overloaded")})

	result := asst.ProcessQuery(context.Background(), "summarize everything")

	if result.Response == "" {
		t.Fatal("degraded response is empty")
	}
	if !strings.Contains(result.Response, "model overloaded") {
		t.Errorf("degraded response does not name the error: %q", result.Response)
	}
	if len(result.Metadata.ToolsUsed) == 0 {
		t.Error("tools_used empty on degraded query")
	}
	if len(result.Metadata.Sources) == 0 {
		t.Error("sources empty on degraded query")
	}
	if asst.log.Len() != 1 {
		t.Errorf("history length = %d, want 1 (degraded queries are logged too)", asst.log.Len())
	}
}

func TestProcessQueryRetrievalFailureDegrades(t *testing.T) {
	store := &fakeStore{loaded: true, err: fmt.Errorf("index corrupted")}
	asst := newTestAssistant(store, &fakeLLM{response: "answer without context"})

	result := asst.ProcessQuery(context.Background(), "anything")

	if result.Response != "answer without context" {
		t.Errorf("response = %q", result.Response)
	}
	if len(result.Metadata.Sources) != 0 {
		t.Errorf("sources = %v, want empty", result.Metadata.Sources)
	}
	if !reflect.DeepEqual(result.Metadata.ToolsUsed, []string{tools.CategoryRAG}) {
		t.Errorf("tools_used = %v", result.Metadata.ToolsUsed)
	}
}

func TestProcessQueryNoIndex(t *testing.T) {
	store := &fakeStore{loaded: false}
	asst := newTestAssistant(store, &fakeLLM{response: "answer"})

	result := asst.ProcessQuery(context.Background(), "plain question")

	for _, category := range result.Metadata.ToolsUsed {
		if category == tools.CategoryRAG {
			t.Error("rag selected without a loaded index")
		}
	}
	if len(result.Metadata.Sources) != 0 {
		t.Errorf("sources = %v, want empty", result.Metadata.Sources)
	}
}

func TestConversationHistoryLifecycle(t *testing.T) {
	store := &fakeStore{loaded: true}
	asst := newTestAssistant(store, &fakeLLM{response: "first answer"})

	asst.ProcessQuery(context.Background(), "first question")
	asst.ProcessQuery(context.Background(), "second question")

	history := asst.GetConversationHistory()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Query != "first question" {
		t.Errorf("history order wrong: %q first", history[0].Query)
	}
	if history[0].Response != "first answer" {
		t.Errorf("history response = %q", history[0].Response)
	}

	asst.ClearHistory()
	if got := asst.GetConversationHistory(); len(got) != 0 {
		t.Fatalf("history after clear = %d, want 0", len(got))
	}

	asst.ProcessQuery(context.Background(), "after clear")
	if got := asst.GetConversationHistory(); len(got) != 1 {
		t.Errorf("history after clear and one query = %d, want 1", len(got))
	}
}

func TestHistoryRecordsMatchGatheredTools(t *testing.T) {
	store := &fakeStore{loaded: true}
	asst := newTestAssistant(store, &fakeLLM{response: "noted"})

	result := asst.ProcessQuery(context.Background(), "save a note about the forecast")

	history := asst.GetConversationHistory()
	if !reflect.DeepEqual(history[0].ToolsUsed, result.Metadata.ToolsUsed) {
		t.Errorf("history tools %v != result tools %v",
			history[0].ToolsUsed, result.Metadata.ToolsUsed)
	}
}
