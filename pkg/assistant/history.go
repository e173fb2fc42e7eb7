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
	"log/slog"
	"sync"
)

// ConversationLog is an in-memory, append-only record of completed
// exchanges. Process-lifetime state; cleared only by explicit operator
// action.
type ConversationLog struct {
	mu      sync.RWMutex
	records []ConversationRecord
}

// NewConversationLog creates an empty log.
func NewConversationLog() *ConversationLog {
	return &ConversationLog{}
}

// Append adds a completed exchange.
func (l *ConversationLog) Append(record ConversationRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
}

// Records returns a copy of the log in append order.
func (l *ConversationLog) Records() []ConversationRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ConversationRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of recorded exchanges.
func (l *ConversationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Clear empties the log.
func (l *ConversationLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
	slog.Info("Conversation history cleared")
}
