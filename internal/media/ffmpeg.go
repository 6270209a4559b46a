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

// Package media wraps the ffmpeg/ffprobe toolchain used by the video scan
// pipeline: probing container streams, pulling embedded caption tracks out
// of uploads, and shrinking audio for the transcription service.
//
// Logic Flow (caption extraction):
//  1. Probe the container with ffprobe and collect the subtitle streams in
//     stream order.
//  2. Attempt to extract each subtitle stream in turn with `-map 0:s:N`.
//     ffmpeg can exit zero and still write nothing useful, so an attempt
//     only counts as a success when the output file exists and is
//     non-empty.
//  3. The first successful attempt wins. If the container has no subtitle
//     streams at all, or every attempt fails, extraction reports a reason
//     instead of an error so the caller can fall through to transcription.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Reasons reported by ExtractFirstSubtitleStream when no caption file
// could be produced. These are diagnostic values, not errors: the scan
// pipeline falls back to audio transcription in both cases.
const (
	ReasonNoSubtitleStreams = "no_subtitle_streams"
	ReasonExtractFailed     = "extract_failed"
)

// Stream is one entry from ffprobe's stream listing. Only the fields the
// pipeline inspects are decoded.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
}

// ProbeResult is the decoded output of `ffprobe -show_streams`.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
}

// SubtitleStreams returns the subtitle streams in container order.
func (p *ProbeResult) SubtitleStreams() []Stream {
	out := make([]Stream, 0)
	for _, s := range p.Streams {
		if s.CodecType == "subtitle" {
			out = append(out, s)
		}
	}
	return out
}

// RunnerFunc executes an external tool and returns its stdout. Tests
// substitute a fake to exercise the toolchain without ffmpeg installed.
type RunnerFunc func(ctx context.Context, path string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = os.Stderr
	return cmd.Output()
}

// Toolchain binds the configured ffmpeg and ffprobe binaries.
type Toolchain struct {
	FFmpegPath  string
	FFprobePath string
	run         RunnerFunc
}

// NewToolchain creates a Toolchain around the given binary paths.
func NewToolchain(ffmpegPath string, ffprobePath string) *Toolchain {
	return NewToolchainWithRunner(ffmpegPath, ffprobePath, defaultRunner)
}

// NewToolchainWithRunner creates a Toolchain with a custom process
// runner. Used by tests to stub out the binaries.
func NewToolchainWithRunner(ffmpegPath string, ffprobePath string, run RunnerFunc) *Toolchain {
	return &Toolchain{
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
		run:         run,
	}
}

// Probe runs ffprobe against the file and decodes the stream listing.
func (t *Toolchain) Probe(ctx context.Context, inputPath string) (*ProbeResult, error) {
	out, err := t.run(ctx, t.FFprobePath,
		"-v", "error",
		"-show_streams",
		"-of", "json",
		inputPath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", inputPath, err)
	}
	var result ProbeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("failed to decode ffprobe output: %w", err)
	}
	return &result, nil
}

// ExtractFirstSubtitleStream attempts to pull an embedded caption track
// out of the video as an SRT file in workDir. On success it returns the
// caption file path and an empty reason. When no captions could be
// produced it returns an empty path and one of the Reason constants; the
// error return is reserved for probe failures.
func (t *Toolchain) ExtractFirstSubtitleStream(ctx context.Context, inputPath string, workDir string) (string, string, error) {
	probe, err := t.Probe(ctx, inputPath)
	if err != nil {
		return "", "", err
	}
	subs := probe.SubtitleStreams()
	if len(subs) == 0 {
		return "", ReasonNoSubtitleStreams, nil
	}

	for i := range subs {
		outPath := filepath.Join(workDir, fmt.Sprintf("captions_%d.srt", i))
		_, err := t.run(ctx, t.FFmpegPath,
			"-y", "-hide_banner",
			"-i", inputPath,
			"-map", fmt.Sprintf("0:s:%d", i),
			outPath)
		if err != nil {
			continue
		}
		// ffmpeg can report success for a stream it could not convert,
		// leaving an empty file behind.
		if info, statErr := os.Stat(outPath); statErr == nil && info.Size() > 0 {
			return outPath, "", nil
		}
	}
	return "", ReasonExtractFailed, nil
}

// CompressForTranscription strips the video track and re-encodes the
// audio as mono 16 kHz 32 kbps MP3, the smallest form the transcription
// service accepts with usable quality. Returns the compressed file path.
func (t *Toolchain) CompressForTranscription(ctx context.Context, inputPath string, workDir string) (string, error) {
	outPath := filepath.Join(workDir, "audio_compressed.mp3")
	_, err := t.run(ctx, t.FFmpegPath,
		"-y", "-hide_banner",
		"-i", inputPath,
		"-vn",
		"-acodec", "mp3",
		"-ar", "16000",
		"-ac", "1",
		"-ab", "32k",
		outPath)
	if err != nil {
		return "", fmt.Errorf("audio compression failed: %w", err)
	}
	return outPath, nil
}
