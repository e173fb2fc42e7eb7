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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kadirpekel/bizmind/pkg/notes"
)

type queryRequest struct {
	Query string `json:"query"`
}

type loadRequest struct {
	Directory string `json:"directory"`
}

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	result := s.assistant.ProcessQuery(r.Context(), req.Query)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.assistant.GetConversationHistory())
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.assistant.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoadKnowledge(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Directory == "" {
		respondError(w, http.StatusBadRequest, "directory must not be empty")
		return
	}

	stats, err := s.knowledge.LoadDirectory(r.Context(), req.Directory)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.assistant.Registry().Categories())
}

func (s *Server) notesStore(w http.ResponseWriter) *notes.Store {
	if s.notes == nil {
		respondError(w, http.StatusServiceUnavailable, "notes store not configured")
		return nil
	}
	return s.notes
}

func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	store := s.notesStore(w)
	if store == nil {
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title must not be empty")
		return
	}

	note, err := store.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	store := s.notesStore(w)
	if store == nil {
		return
	}

	all, err := store.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if all == nil {
		all = []notes.Note{}
	}
	respondJSON(w, http.StatusOK, all)
}

func (s *Server) handleSearchNotes(w http.ResponseWriter, r *http.Request) {
	store := s.notesStore(w)
	if store == nil {
		return
	}

	term := r.URL.Query().Get("q")
	if term == "" {
		respondError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	found, err := store.Search(r.Context(), term)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if found == nil {
		found = []notes.Note{}
	}
	respondJSON(w, http.StatusOK, found)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	store := s.notesStore(w)
	if store == nil {
		return
	}

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := store.GetByID(r.Context(), id)
	if errors.Is(err, notes.ErrNotFound) {
		respondError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	store := s.notesStore(w)
	if store == nil {
		return
	}

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := store.Update(r.Context(), id, req.Title, req.Content)
	if errors.Is(err, notes.ErrNotFound) {
		respondError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	store := s.notesStore(w)
	if store == nil {
		return
	}

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	err := store.Delete(r.Context(), id)
	if errors.Is(err, notes.ErrNotFound) {
		respondError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
