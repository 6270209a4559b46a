// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cor

import (
	"context"
	"log/slog"
	"os"
)

// BaseContext is the default Context implementation.
type BaseContext struct {
	context   context.Context
	data      map[string]interface{}
	errors    map[string]error
	tempFiles []string
	tempDirs  []string
}

// NewBaseContext creates an empty workflow context bound to ctx.
func NewBaseContext(ctx context.Context) *BaseContext {
	return &BaseContext{
		context:   ctx,
		data:      make(map[string]interface{}),
		errors:    make(map[string]error),
		tempFiles: make([]string, 0),
		tempDirs:  make([]string, 0),
	}
}

func (b *BaseContext) SetContext(ctx context.Context) {
	b.context = ctx
}

func (b *BaseContext) GetContext() context.Context {
	return b.context
}

func (b *BaseContext) Add(key string, value interface{}) Context {
	b.data[key] = value
	return b
}

func (b *BaseContext) Get(key string) interface{} {
	return b.data[key]
}

func (b *BaseContext) Remove(key string) {
	delete(b.data, key)
}

func (b *BaseContext) AddError(key string, err error) {
	b.errors[key] = err
}

func (b *BaseContext) GetErrors() map[string]error {
	return b.errors
}

func (b *BaseContext) HasErrors() bool {
	return len(b.errors) > 0
}

func (b *BaseContext) AddTempFile(file string) {
	b.tempFiles = append(b.tempFiles, file)
}

func (b *BaseContext) GetTempFiles() []string {
	return b.tempFiles
}

func (b *BaseContext) AddTempDir(dir string) {
	b.tempDirs = append(b.tempDirs, dir)
}

func (b *BaseContext) GetTempDirs() []string {
	return b.tempDirs
}

// Close removes every temp file and directory registered during the
// workflow. Removal failures are logged and skipped so one stubborn file
// does not leak the rest of the workspace.
func (b *BaseContext) Close() {
	for _, file := range b.tempFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove temp file", "file", file, "error", err)
		}
	}
	for _, dir := range b.tempDirs {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}
	b.tempFiles = b.tempFiles[:0]
	b.tempDirs = b.tempDirs[:0]
}
