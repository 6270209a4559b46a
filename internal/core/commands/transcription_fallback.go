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

// This file defines the speech-to-text fallback branch of the scan
// pipeline, used when a video carries no usable embedded captions.
//
// Logic Flow:
//  1. Skip entirely if the subtitle parser already produced segments.
//  2. If the video is over the service's 25 MiB payload ceiling, strip the
//     video track and re-encode the audio as low-bitrate mono. A failed
//     compression is terminal with a TooLargeError; nothing submittable
//     exists at that point.
//  3. Submit the (possibly compressed) file for transcription with
//     segment-level timestamps. Service failure is terminal with a
//     TranscriptionError; the fallback has no further fallback.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/core/model"
	"github.com/bfmcgo2/sortie-upload/internal/media"
)

// TranscriptionSizeLimitBytes is the speech-to-text service's hard payload
// ceiling, 25 MiB. A file at exactly the limit is accepted as-is.
const TranscriptionSizeLimitBytes int64 = 25 * 1024 * 1024

// Transcriber is the speech-to-text boundary. The production
// implementation is cloud.WhisperClient.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]model.TranscriptSegment, error)
}

// TranscriptionFallback produces transcript segments from the video's
// audio when caption extraction yields nothing.
type TranscriptionFallback struct {
	cor.BaseCommand
	toolchain   *media.Toolchain
	transcriber Transcriber
}

func NewTranscriptionFallback(name string, toolchain *media.Toolchain, transcriber Transcriber) *TranscriptionFallback {
	cmd := &TranscriptionFallback{
		BaseCommand: *cor.NewBaseCommand(name),
		toolchain:   toolchain,
		transcriber: transcriber,
	}
	cmd.InputParamName = CtxParamVideoPath
	return cmd
}

// IsExecutable gates the fallback branch: it only runs when no segments
// were produced from embedded captions.
func (c *TranscriptionFallback) IsExecutable(context cor.Context) bool {
	return context.Get(c.GetInputParam()) != nil && context.Get(CtxParamSegments) == nil
}

// Execute compresses if needed, then transcribes.
func (c *TranscriptionFallback) Execute(chainCtx cor.Context) {
	videoPath := chainCtx.Get(c.GetInputParam()).(string)
	workDir := chainCtx.Get(CtxParamWorkDir).(string)
	ctx := chainCtx.GetContext()

	info, err := os.Stat(videoPath)
	if err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		chainCtx.AddError(c.GetName(), err)
		return
	}

	audioPath := videoPath
	if info.Size() > TranscriptionSizeLimitBytes {
		slog.Info("video exceeds transcription size limit, compressing audio",
			"video", videoPath, "size_bytes", info.Size())
		compressed, err := c.toolchain.CompressForTranscription(ctx, videoPath, workDir)
		if err != nil {
			c.GetErrorCounter().Add(ctx, 1)
			chainCtx.AddError(c.GetName(), &TooLargeError{SizeBytes: info.Size(), Cause: err})
			return
		}
		audioPath = compressed
	}

	segments, err := c.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		chainCtx.AddError(c.GetName(), &TranscriptionError{Cause: err})
		return
	}

	c.GetSuccessCounter().Add(ctx, 1)
	chainCtx.Add(CtxParamSegments, segments)
}
