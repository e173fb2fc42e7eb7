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

package observability

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig enables the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Metrics holds the pipeline instruments. A zero Metrics records nothing.
type Metrics struct {
	queryDuration  metric.Float64Histogram
	queriesTotal   metric.Int64Counter
	queryDegraded  metric.Int64Counter
	llmDuration    metric.Float64Histogram
	llmTokens      metric.Int64Counter
	llmErrors      metric.Int64Counter
	docsIngested   metric.Int64Counter
	chunksIngested metric.Int64Counter
}

var (
	globalMetrics *Metrics
	metricsMu     sync.RWMutex
)

// InitMetrics creates the Prometheus-backed meter and instruments and
// installs them as the global metrics recorder.
func InitMetrics(ctx context.Context, cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{}, nil
	}

	promExporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)

	meter := meterProvider.Meter("bizmind")

	m := &Metrics{}

	m.queryDuration, err = meter.Float64Histogram(
		"bizmind_query_duration_seconds",
		metric.WithDescription("End-to-end query processing duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query duration histogram: %w", err)
	}

	m.queriesTotal, err = meter.Int64Counter(
		"bizmind_queries_total",
		metric.WithDescription("Total processed queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create queries counter: %w", err)
	}

	m.queryDegraded, err = meter.Int64Counter(
		"bizmind_queries_degraded_total",
		metric.WithDescription("Queries answered with a degraded response"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create degraded queries counter: %w", err)
	}

	m.llmDuration, err = meter.Float64Histogram(
		"bizmind_llm_request_duration_seconds",
		metric.WithDescription("LLM request duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm duration histogram: %w", err)
	}

	m.llmTokens, err = meter.Int64Counter(
		"bizmind_llm_tokens_total",
		metric.WithDescription("Total tokens used by LLM requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm tokens counter: %w", err)
	}

	m.llmErrors, err = meter.Int64Counter(
		"bizmind_llm_errors_total",
		metric.WithDescription("Total LLM request errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm errors counter: %w", err)
	}

	m.docsIngested, err = meter.Int64Counter(
		"bizmind_documents_ingested_total",
		metric.WithDescription("Total documents ingested into the knowledge store"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create documents counter: %w", err)
	}

	m.chunksIngested, err = meter.Int64Counter(
		"bizmind_chunks_ingested_total",
		metric.WithDescription("Total chunks ingested into the knowledge store"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunks counter: %w", err)
	}

	metricsMu.Lock()
	globalMetrics = m
	metricsMu.Unlock()

	return m, nil
}

// GetGlobalMetrics returns the installed metrics recorder, or nil.
func GetGlobalMetrics() *Metrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return globalMetrics
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordQuery records one completed query.
func (m *Metrics) RecordQuery(ctx context.Context, duration time.Duration, degraded bool) {
	if m == nil || m.queriesTotal == nil {
		return
	}
	m.queriesTotal.Add(ctx, 1)
	m.queryDuration.Record(ctx, duration.Seconds())
	if degraded {
		m.queryDegraded.Add(ctx, 1)
	}
}

// RecordLLMCall records one LLM request.
func (m *Metrics) RecordLLMCall(ctx context.Context, model string, duration time.Duration, tokens int, err error) {
	if m == nil || m.llmDuration == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("model", model))
	m.llmDuration.Record(ctx, duration.Seconds(), attrs)
	if tokens > 0 {
		m.llmTokens.Add(ctx, int64(tokens), attrs)
	}
	if err != nil {
		m.llmErrors.Add(ctx, 1, attrs)
	}
}

// RecordIngest records one completed ingestion run.
func (m *Metrics) RecordIngest(ctx context.Context, docs, chunks int) {
	if m == nil || m.docsIngested == nil {
		return
	}
	m.docsIngested.Add(ctx, int64(docs))
	m.chunksIngested.Add(ctx, int64(chunks))
}
