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
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probeTwoSubs = `{"streams": [
  {"index": 0, "codec_name": "h264", "codec_type": "video"},
  {"index": 1, "codec_name": "aac", "codec_type": "audio"},
  {"index": 2, "codec_name": "dvd_subtitle", "codec_type": "subtitle"},
  {"index": 3, "codec_name": "mov_text", "codec_type": "subtitle"}
]}`

const probeNoSubs = `{"streams": [
  {"index": 0, "codec_name": "h264", "codec_type": "video"},
  {"index": 1, "codec_name": "aac", "codec_type": "audio"}
]}`

func fakeToolchain(fn RunnerFunc) *Toolchain {
	return NewToolchainWithRunner("ffmpeg", "ffprobe", fn)
}

func outputArg(args []string) string {
	return args[len(args)-1]
}

func TestProbeFiltersSubtitleStreams(t *testing.T) {
	tc := fakeToolchain(func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte(probeTwoSubs), nil
	})
	result, err := tc.Probe(context.Background(), "video.mp4")
	require.NoError(t, err)
	subs := result.SubtitleStreams()
	require.Len(t, subs, 2)
	assert.Equal(t, "dvd_subtitle", subs[0].CodecName)
	assert.Equal(t, "mov_text", subs[1].CodecName)
}

func TestExtractFirstSubtitleStreamNoStreams(t *testing.T) {
	tc := fakeToolchain(func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte(probeNoSubs), nil
	})
	path, reason, err := tc.ExtractFirstSubtitleStream(context.Background(), "video.mp4", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, ReasonNoSubtitleStreams, reason)
}

// The first advertised stream is a bitmap subtitle that cannot be muxed to
// SRT; extraction must move on and succeed with the second stream.
func TestExtractFirstSubtitleStreamRetriesNextStream(t *testing.T) {
	workDir := t.TempDir()
	var attempts []string

	tc := fakeToolchain(func(_ context.Context, path string, args ...string) ([]byte, error) {
		if path == "ffprobe" {
			return []byte(probeTwoSubs), nil
		}
		for i, a := range args {
			if a == "-map" {
				attempts = append(attempts, args[i+1])
			}
		}
		if strings.Contains(outputArg(args), "captions_0") {
			return nil, errors.New("Subtitle encoding currently only possible from text to text or bitmap to bitmap")
		}
		return nil, os.WriteFile(outputArg(args), []byte("1\n00:00:01,000 --> 00:00:02,000\nhi\n"), 0o644)
	})

	path, reason, err := tc.ExtractFirstSubtitleStream(context.Background(), "video.mp4", workDir)
	require.NoError(t, err)
	assert.Empty(t, reason)
	assert.Equal(t, filepath.Join(workDir, "captions_1.srt"), path)
	assert.Equal(t, []string{"0:s:0", "0:s:1"}, attempts)
}

// A zero-exit extraction that leaves an empty file behind is still a failure.
func TestExtractFirstSubtitleStreamRejectsEmptyOutput(t *testing.T) {
	tc := fakeToolchain(func(_ context.Context, path string, args ...string) ([]byte, error) {
		if path == "ffprobe" {
			return []byte(probeTwoSubs), nil
		}
		return nil, os.WriteFile(outputArg(args), nil, 0o644)
	})

	path, reason, err := tc.ExtractFirstSubtitleStream(context.Background(), "video.mp4", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, ReasonExtractFailed, reason)
}

func TestCompressForTranscriptionArgs(t *testing.T) {
	workDir := t.TempDir()
	var captured []string
	tc := fakeToolchain(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		captured = args
		return nil, nil
	})

	out, err := tc.CompressForTranscription(context.Background(), "video.mp4", workDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(workDir, "audio_compressed.mp3"), out)

	joined := strings.Join(captured, " ")
	assert.Contains(t, joined, "-vn")
	assert.Contains(t, joined, "-ar 16000")
	assert.Contains(t, joined, "-ac 1")
	assert.Contains(t, joined, "-ab 32k")
}
