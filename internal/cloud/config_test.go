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

package cloud

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseTOML = `
[application]
name = "sortie-upload"
google_project_id = "base-project"
location = "us-central1"

[storage]
video_bucket = "base-bucket"

[transcription]
base_url = "https://api.openai.com/v1"
model = "whisper-1"
timeout_in_seconds = 120

[agent_models.mention-extractor]
model = "gemini-2.0-flash"
temperature = 0.0
output_format = "application/json"
rate_limit = 2
`

const overrideTOML = `
[application]
google_project_id = "test-project"

[storage]
video_bucket = "test-bucket"
`

func TestLoadConfigHierarchy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseTOML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test.toml"), []byte(overrideTOML), 0o644))

	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "test")

	config := NewConfig()
	LoadConfig(config)

	// Override file wins where both define a value.
	assert.Equal(t, "test-project", config.Application.GoogleProjectId)
	assert.Equal(t, "test-bucket", config.Storage.VideoBucket)
	// Base-only values survive the overlay.
	assert.Equal(t, "sortie-upload", config.Application.Name)
	assert.Equal(t, "whisper-1", config.Transcription.Model)

	agent, ok := config.AgentModels["mention-extractor"]
	require.True(t, ok)
	assert.Equal(t, "gemini-2.0-flash", agent.Model)
	assert.Equal(t, float32(0.0), agent.Temperature)
	assert.Equal(t, "application/json", agent.OutputFormat)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"locations": []}`, StripCodeFences("```json\n{\"locations\": []}\n```"))
	assert.Equal(t, `{"locations": []}`, StripCodeFences(`{"locations": []}`))
	assert.Equal(t, "plain text", StripCodeFences("```\nplain text\n```"))
}

func TestGCSNotificationGeneralLocations(t *testing.T) {
	n := &GCSPubSubNotification{MetaData: map[string]string{
		MetadataKeyGeneralLocations: "Philadelphia, PA, USA | New York, NY",
	}}
	assert.Equal(t, []string{"Philadelphia, PA, USA", "New York, NY"}, n.GeneralLocations())

	empty := &GCSPubSubNotification{}
	assert.Empty(t, empty.GeneralLocations())
}
