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

package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// DirectorySource discovers plain-text documents under a filesystem
// directory, recursing through subdirectories.
type DirectorySource struct {
	basePath   string
	extensions []string
}

// NewDirectorySource creates a directory-based data source.
// Only files with the given extensions (default: .txt) are discovered.
func NewDirectorySource(basePath string, extensions ...string) *DirectorySource {
	if len(extensions) == 0 {
		extensions = []string{".txt"}
	}
	return &DirectorySource{
		basePath:   basePath,
		extensions: extensions,
	}
}

// Type returns the data source type.
func (ds *DirectorySource) Type() string {
	return "directory"
}

// GetBasePath returns the base directory path.
func (ds *DirectorySource) GetBasePath() string {
	return ds.basePath
}

func (ds *DirectorySource) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range ds.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// DiscoverDocuments returns channels of discovered documents and errors.
// Discovery runs asynchronously; per-file errors are reported through the
// error channel and never abort the walk.
func (ds *DirectorySource) DiscoverDocuments(ctx context.Context) (<-chan Document, <-chan error) {
	docChan := make(chan Document, 100)
	errChan := make(chan error, 10)

	go func() {
		defer close(docChan)
		defer close(errChan)

		err := filepath.Walk(ds.basePath, func(path string, info os.FileInfo, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				// Non-fatal, report and continue
				select {
				case errChan <- err:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			}

			if info.IsDir() {
				return nil
			}

			if !ds.matches(path) || info.Size() == 0 {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				select {
				case errChan <- err:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			}

			relPath, relErr := filepath.Rel(ds.basePath, path)
			if relErr != nil {
				relPath = path
			}

			doc := Document{
				ID:         path,
				Content:    string(content),
				SourcePath: relPath,
				Size:       info.Size(),
			}

			select {
			case docChan <- doc:
			case <-ctx.Done():
				return ctx.Err()
			}

			return nil
		})

		if err != nil && err != context.Canceled {
			select {
			case errChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	return docChan, errChan
}
