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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/kadirpekel/bizmind/pkg/llms"
	"github.com/kadirpekel/bizmind/pkg/observability"
	"github.com/kadirpekel/bizmind/pkg/tools"
)

// contentPreviewLimit bounds how much of each retrieved document goes
// into the prompt, measured in characters.
const contentPreviewLimit = 500

// systemPrompt describes the assistant's role and data sources.
const systemPrompt = `You are a Business Intelligence Assistant.
You have access to multiple data sources including:
- Internal knowledge base (documents, case studies, procedures)
- CRM system (customer and deal information)
- Weather data (for context-aware insights)
- Historical notes database

Your task is to synthesize information from these sources to provide
intelligent, actionable business insights. Be specific, cite sources,
and provide clear recommendations.`

// userMessageTemplate embeds the query, the assembled context and the
// response-shaping directives.
const userMessageTemplate = `Query: %s

Available Context:
%s

Please provide a comprehensive response that:
1. Directly answers the question
2. References specific information from the sources
3. Provides actionable insights or recommendations
4. Cites sources clearly`

// Synthesizer turns gathered results into a prompt and asks the LLM
// for an answer.
type Synthesizer struct {
	llm llms.Provider

	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
}

// NewSynthesizer creates a synthesizer over an LLM provider.
func NewSynthesizer(llm llms.Provider) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// buildContext concatenates the gathered results into a single textual
// context block: knowledge-base hits first, then the stub payloads in
// their fixed order.
func buildContext(info *GatheredInfo) string {
	var parts []string

	if len(info.RAG) > 0 {
		parts = append(parts, "=== Knowledge Base Information ===")
		for i, doc := range info.RAG {
			content := doc.Content
			if runes := []rune(content); len(runes) > contentPreviewLimit {
				content = string(runes[:contentPreviewLimit])
			}
			parts = append(parts, fmt.Sprintf("\nDocument %d:", i+1))
			parts = append(parts, content)
			parts = append(parts, fmt.Sprintf("Source: %s", doc.Source))
		}
	}

	for _, category := range stubCategories {
		payload, ok := info.Tools[category]
		if !ok {
			continue
		}
		serialized, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			// ToolStatus is two strings; this cannot happen.
			serialized = []byte(payload.Message)
		}
		parts = append(parts, fmt.Sprintf("\n=== %s Data ===", tools.DisplayName(category)))
		parts = append(parts, string(serialized))
	}

	return strings.Join(parts, "\n")
}

// countTokens estimates the prompt size for logging. Best effort; a
// missing encoding yields zero.
func (s *Synthesizer) countTokens(text string) int {
	s.encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Debug("Token encoding unavailable", "error", err)
			return
		}
		s.encoding = enc
	})

	if s.encoding == nil {
		return 0
	}
	return len(s.encoding.Encode(text, nil, nil))
}

// Synthesize builds the prompt and returns the model's answer.
//
// Submission failures are returned to the orchestrator, which owns the
// degrade-to-text branch.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, info *GatheredInfo) (string, error) {
	ctx, span := observability.GetTracer("bizmind.assistant").Start(ctx, observability.SpanSynthesize)
	defer span.End()

	userMessage := fmt.Sprintf(userMessageTemplate, query, buildContext(info))

	if promptTokens := s.countTokens(systemPrompt + userMessage); promptTokens > 0 {
		slog.Debug("Synthesizing response", "prompt_tokens", promptTokens)
	}

	messages := []llms.Message{
		{Role: llms.RoleSystem, Content: systemPrompt},
		{Role: llms.RoleUser, Content: userMessage},
	}

	response, _, err := s.llm.Generate(ctx, messages)
	if err != nil {
		return "", err
	}

	return response, nil
}
