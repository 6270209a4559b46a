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
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verboseJSONResponse = `{
  "text": "We checked into the Guildhouse Hotel.",
  "segments": [
    {"id": 0, "start": 9.0, "end": 13.0, "text": "We checked into the Guildhouse Hotel."}
  ]
}`

func writeTestAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake-mp3-bytes"), 0o644))
	return path
}

func newTestWhisperClient(serverURL string) *WhisperClient {
	return NewWhisperClient(&Transcription{
		BaseURL:          serverURL,
		APIKey:           "test-key",
		Model:            "whisper-1",
		TimeoutInSeconds: 5,
		MaxRetries:       2,
	})
}

func TestWhisperTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "segment", r.FormValue("timestamp_granularities[]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(verboseJSONResponse))
	}))
	defer server.Close()

	segments, err := newTestWhisperClient(server.URL).Transcribe(context.Background(), writeTestAudio(t))
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, 9.0, segments[0].Start)
	assert.Equal(t, 13.0, segments[0].End)
	assert.Equal(t, "We checked into the Guildhouse Hotel.", segments[0].Text)
}

func TestWhisperRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(verboseJSONResponse))
	}))
	defer server.Close()

	segments, err := newTestWhisperClient(server.URL).Transcribe(context.Background(), writeTestAudio(t))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, segments, 1)
}

func TestWhisperDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = w.Write([]byte(`{"error": "file too large"}`))
	}))
	defer server.Close()

	_, err := newTestWhisperClient(server.URL).Transcribe(context.Background(), writeTestAudio(t))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "413")
}
