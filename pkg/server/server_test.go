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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kadirpekel/bizmind/pkg/assistant"
	"github.com/kadirpekel/bizmind/pkg/llms"
	"github.com/kadirpekel/bizmind/pkg/notes"
	"github.com/kadirpekel/bizmind/pkg/rag"
	"github.com/kadirpekel/bizmind/pkg/tools"
)

type fakeLLM struct {
	response string
}

func (f *fakeLLM) Generate(ctx context.Context, messages []llms.Message) (string, int, error) {
	return f.response, 1, nil
}

func (f *fakeLLM) GetModelName() string { return "fake" }
func (f *fakeLLM) Close() error         { return nil }

type fakeStore struct {
	docs   []rag.RetrievedDocument
	loaded bool
}

func (f *fakeStore) Search(ctx context.Context, query string) ([]rag.RetrievedDocument, error) {
	return f.docs, nil
}

func (f *fakeStore) Loaded() bool { return f.loaded }

type fakeLoader struct {
	stats *rag.IngestStats
	err   error
	dir   string
}

func (f *fakeLoader) LoadDirectory(ctx context.Context, dir string) (*rag.IngestStats, error) {
	f.dir = dir
	return f.stats, f.err
}

func newTestServer(t *testing.T, withNotes bool) (*Server, *fakeLoader) {
	t.Helper()

	asst := assistant.New(assistant.Config{
		Registry:    tools.NewRegistry(tools.RegistryConfig{HubSpotAvailable: true}),
		Store:       &fakeStore{loaded: true},
		Synthesizer: assistant.NewSynthesizer(&fakeLLM{response: "the answer"}),
	})

	var notesStore *notes.Store
	if withNotes {
		var err error
		notesStore, err = notes.Open(filepath.Join(t.TempDir(), "notes.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { notesStore.Close() })
	}

	loader := &fakeLoader{stats: &rag.IngestStats{Documents: 2, Chunks: 5}}
	return New(Config{}, asst, loader, notesStore), loader
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	srv.router().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, false)

	rr := doRequest(t, srv, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestQueryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, false)

	rr := doRequest(t, srv, "POST", "/v1/query", `{"query": "what happened in Q3?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var result assistant.QueryResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if result.Response != "the answer" {
		t.Errorf("response = %q", result.Response)
	}
	if result.Query != "what happened in Q3?" {
		t.Errorf("query = %q", result.Query)
	}
}

func TestQueryEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t, false)

	if rr := doRequest(t, srv, "POST", "/v1/query", `{"query": "  "}`); rr.Code != http.StatusBadRequest {
		t.Errorf("blank query status = %d, want 400", rr.Code)
	}
	if rr := doRequest(t, srv, "POST", "/v1/query", `not json`); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rr.Code)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, false)

	doRequest(t, srv, "POST", "/v1/query", `{"query": "first"}`)

	rr := doRequest(t, srv, "GET", "/v1/history", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var history []assistant.ConversationRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Errorf("history length = %d, want 1", len(history))
	}

	if rr := doRequest(t, srv, "DELETE", "/v1/history", ""); rr.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rr.Code)
	}

	rr = doRequest(t, srv, "GET", "/v1/history", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Errorf("history after clear = %d, want 0", len(history))
	}
}

func TestLoadKnowledgeEndpoint(t *testing.T) {
	srv, loader := newTestServer(t, false)

	rr := doRequest(t, srv, "POST", "/v1/knowledge/load", `{"directory": "/docs"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if loader.dir != "/docs" {
		t.Errorf("loader directory = %q", loader.dir)
	}

	var stats rag.IngestStats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Documents != 2 || stats.Chunks != 5 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestLoadKnowledgeEndpointError(t *testing.T) {
	srv, loader := newTestServer(t, false)
	loader.err = fmt.Errorf("embedder unreachable")
	loader.stats = nil

	rr := doRequest(t, srv, "POST", "/v1/knowledge/load", `{"directory": "/docs"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "embedder unreachable") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestToolsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, false)

	rr := doRequest(t, srv, "GET", "/v1/tools", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var categories []tools.CategoryDescriptor
	if err := json.Unmarshal(rr.Body.Bytes(), &categories); err != nil {
		t.Fatal(err)
	}
	if len(categories) != 3 {
		t.Errorf("categories = %d, want 3", len(categories))
	}
}

func TestNotesLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rr := doRequest(t, srv, "POST", "/v1/notes/", `{"title": "standup", "content": "pipeline review"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created notes.Note
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rr = doRequest(t, srv, "GET", fmt.Sprintf("/v1/notes/%d", created.ID), "")
	if rr.Code != http.StatusOK {
		t.Errorf("get status = %d", rr.Code)
	}

	rr = doRequest(t, srv, "PUT", fmt.Sprintf("/v1/notes/%d", created.ID), `{"title": "standup", "content": "revised"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("update status = %d", rr.Code)
	}

	rr = doRequest(t, srv, "GET", "/v1/notes/search?q=revised", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("search status = %d", rr.Code)
	}
	var found []notes.Note
	if err := json.Unmarshal(rr.Body.Bytes(), &found); err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 {
		t.Errorf("search results = %d, want 1", len(found))
	}

	rr = doRequest(t, srv, "DELETE", fmt.Sprintf("/v1/notes/%d", created.ID), "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rr.Code)
	}

	rr = doRequest(t, srv, "GET", fmt.Sprintf("/v1/notes/%d", created.ID), "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rr.Code)
	}
}

func TestNotesDisabled(t *testing.T) {
	srv, _ := newTestServer(t, false)

	rr := doRequest(t, srv, "GET", "/v1/notes/", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t, false)

	rr := doRequest(t, srv, "GET", "/health", "")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "client-supplied" {
		t.Errorf("request ID = %q, want client-supplied", rec.Header().Get("X-Request-ID"))
	}
}
