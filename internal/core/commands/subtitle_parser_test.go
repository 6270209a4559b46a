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

package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/core/model"
	"github.com/bfmcgo2/sortie-upload/internal/media"
)

func TestSubtitleParserProducesSegments(t *testing.T) {
	captionPath := filepath.Join(t.TempDir(), "captions_0.srt")
	srt := "1\n00:00:09,000 --> 00:00:13,000\nWe checked into the Guildhouse Hotel\n"
	require.NoError(t, os.WriteFile(captionPath, []byte(srt), 0o644))

	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(CtxParamCaptionFile, captionPath)

	cmd := NewSubtitleParser("subtitle-parser")
	require.True(t, cmd.IsExecutable(ctx))
	cmd.Execute(ctx)

	require.False(t, ctx.HasErrors())
	segments := ctx.Get(CtxParamSegments).([]model.TranscriptSegment)
	require.Len(t, segments, 1)
	assert.Equal(t, 9.0, segments[0].Start)
}

// No caption file on the context means the parser is skipped and the
// transcription fallback branch stays armed.
func TestSubtitleParserSkippedWithoutCaptionFile(t *testing.T) {
	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(CtxParamCaptionFailure, media.ReasonNoSubtitleStreams)

	assert.False(t, NewSubtitleParser("subtitle-parser").IsExecutable(ctx))
}

// A caption file with no parseable cues re-arms the fallback branch
// instead of yielding an empty transcript.
func TestSubtitleParserEmptyFileArmsFallback(t *testing.T) {
	captionPath := filepath.Join(t.TempDir(), "captions_0.srt")
	require.NoError(t, os.WriteFile(captionPath, []byte("garbage\n"), 0o644))

	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(CtxParamCaptionFile, captionPath)

	NewSubtitleParser("subtitle-parser").Execute(ctx)
	require.False(t, ctx.HasErrors())
	assert.Nil(t, ctx.Get(CtxParamSegments))
	assert.Equal(t, media.ReasonExtractFailed, ctx.Get(CtxParamCaptionFailure))
}
