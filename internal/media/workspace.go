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

package media

import (
	"fmt"
	"os"
)

// CreateWorkspace makes a fresh per-scan scratch directory. Callers must
// register the returned path on the workflow context so it is removed
// when the scan finishes.
func CreateWorkspace(scanID string) (string, error) {
	dir, err := os.MkdirTemp("", fmt.Sprintf("scan-%s-*", scanID))
	if err != nil {
		return "", fmt.Errorf("failed to create scan workspace: %w", err)
	}
	return dir, nil
}
