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
	"fmt"
	"os"

	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/media"
)

// SubtitleParser converts an extracted caption file into timestamped
// transcript segments. It only runs when the caption extractor produced a
// file; otherwise the chain moves straight to the transcription fallback.
type SubtitleParser struct {
	cor.BaseCommand
}

func NewSubtitleParser(name string) *SubtitleParser {
	cmd := &SubtitleParser{BaseCommand: *cor.NewBaseCommand(name)}
	cmd.InputParamName = CtxParamCaptionFile
	return cmd
}

// Execute reads and parses the caption file into segments. A caption file
// that parses to zero cues is treated like extraction failure: the
// segments key is left unset so the transcription fallback still runs.
func (c *SubtitleParser) Execute(context cor.Context) {
	captionPath := context.Get(c.GetInputParam()).(string)

	data, err := os.ReadFile(captionPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to read caption file %s: %w", captionPath, err))
		return
	}

	segments := media.ParseSRT(string(data))
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	if len(segments) == 0 {
		context.Add(CtxParamCaptionFailure, media.ReasonExtractFailed)
		return
	}
	context.Add(CtxParamSegments, segments)
}
