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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/kadirpekel/bizmind/pkg/config"
	"github.com/kadirpekel/bizmind/pkg/observability"
	"github.com/kadirpekel/bizmind/pkg/server"
)

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("bizmind version %s\n", version)
	return nil
}

// ServeCmd starts the HTTP server.
type ServeCmd struct {
	DocsFolder string `name:"docs-folder" help:"Document directory to ingest at startup." type:"path" placeholder:"PATH"`
	Port       int    `help:"Port to listen on." default:"0"`
	Observe    bool   `help:"Enable observability (metrics + OTLP tracing)."`
}

func (c *ServeCmd) Run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	if c.Observe {
		cfg.Observability.TracingEnabled = true
		cfg.Observability.MetricsEnabled = true
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	shutdownTracer, err := observability.InitGlobalTracer(ctx, observability.TracerConfig{
		Enabled:     cfg.Observability.TracingEnabled,
		EndpointURL: cfg.Observability.OTLPEndpoint,
		ServiceName: "bizmind",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Warn("Tracer shutdown error", "error", err)
		}
	}()

	if _, err := observability.InitMetrics(ctx, observability.MetricsConfig{
		Enabled: cfg.Observability.MetricsEnabled,
	}); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Recover a previously persisted index, then ingest fresh documents
	// when a folder is given.
	a.store.MarkLoaded(ctx)
	if c.DocsFolder != "" {
		if _, err := a.store.LoadDirectory(ctx, c.DocsFolder); err != nil {
			return fmt.Errorf("failed to load knowledge base: %w", err)
		}
	}

	srv := server.New(server.Config{
		Address:        cfg.Server.Address(),
		MetricsEnabled: cfg.Observability.MetricsEnabled,
	}, a.assistant, a.store, a.notes)

	return srv.Start(ctx)
}

// IndexCmd ingests a document directory into the knowledge base.
type IndexCmd struct {
	Directory string `arg:"" help:"Directory containing .txt documents." type:"path"`
}

func (c *IndexCmd) Run(cfg *config.Config) error {
	ctx := context.Background()

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.store.LoadDirectory(ctx, c.Directory)
	if err != nil {
		return fmt.Errorf("failed to load knowledge base: %w", err)
	}

	fmt.Printf("Indexed %d documents (%d chunks)\n", stats.Documents, stats.Chunks)
	return nil
}

// QueryCmd runs a single query and prints the response.
type QueryCmd struct {
	Query string `arg:"" help:"The question to ask."`
}

func (c *QueryCmd) Run(cfg *config.Config) error {
	ctx := context.Background()

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.store.MarkLoaded(ctx)

	result := a.assistant.ProcessQuery(ctx, c.Query)

	fmt.Println(result.Response)
	if len(result.Metadata.Sources) > 0 {
		fmt.Printf("\nSources: %v\n", result.Metadata.Sources)
	}
	fmt.Printf("Tools: %v  (%.2fs)\n",
		result.Metadata.ToolsUsed, result.Metadata.ProcessingTime.Seconds())
	return nil
}
