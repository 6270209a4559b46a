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

// This file defines the command that probes an uploaded video for embedded
// caption tracks and extracts the first usable one as an SRT file.
//
// Logic Flow:
//  1. Read the local video path from the context.
//  2. Ask the media toolchain to extract the first subtitle stream that
//     actually produces output (containers can advertise bitmap subtitle
//     streams that cannot be converted to SRT).
//  3. On success, publish the caption file path for the subtitle parser.
//  4. On failure, publish the failure reason instead. This is not an
//     error: the transcription fallback picks up where captions left off.
//     Only a probe failure (unreadable container) is fatal.
package commands

import (
	"log/slog"

	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/media"
)

// CaptionExtractor probes the video container and extracts embedded
// captions to a subtitle file when possible.
type CaptionExtractor struct {
	cor.BaseCommand
	toolchain *media.Toolchain
}

// NewCaptionExtractor creates the command around the media toolchain.
func NewCaptionExtractor(name string, toolchain *media.Toolchain) *CaptionExtractor {
	cmd := &CaptionExtractor{
		BaseCommand: *cor.NewBaseCommand(name),
		toolchain:   toolchain,
	}
	cmd.InputParamName = CtxParamVideoPath
	return cmd
}

// Execute runs the probe-and-extract attempt.
func (c *CaptionExtractor) Execute(context cor.Context) {
	videoPath := context.Get(c.GetInputParam()).(string)
	workDir := context.Get(CtxParamWorkDir).(string)

	captionPath, reason, err := c.toolchain.ExtractFirstSubtitleStream(context.GetContext(), videoPath, workDir)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	if captionPath != "" {
		context.Add(CtxParamCaptionFile, captionPath)
		return
	}
	slog.Info("no usable embedded captions, will fall back to transcription",
		"video", videoPath, "reason", reason)
	context.Add(CtxParamCaptionFailure, reason)
}
