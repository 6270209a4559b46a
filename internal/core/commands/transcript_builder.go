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
	"strconv"
	"strings"

	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/core/model"
)

// TranscriptBuilder flattens transcript segments into the newline-joined
// `[start->end] text` form the mention extraction prompt reads timestamps
// back out of. The bracket-arrow format is a contract with the prompt, not
// a display choice.
type TranscriptBuilder struct {
	cor.BaseCommand
}

func NewTranscriptBuilder(name string) *TranscriptBuilder {
	cmd := &TranscriptBuilder{BaseCommand: *cor.NewBaseCommand(name)}
	cmd.InputParamName = CtxParamSegments
	return cmd
}

// Execute writes the flattened transcript to the context.
func (c *TranscriptBuilder) Execute(context cor.Context) {
	segments := context.Get(c.GetInputParam()).([]model.TranscriptSegment)

	var sb strings.Builder
	for i, seg := range segments {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("[")
		sb.WriteString(formatSeconds(seg.Start))
		sb.WriteString("->")
		sb.WriteString(formatSeconds(seg.End))
		sb.WriteString("] ")
		sb.WriteString(strings.TrimSpace(seg.Text))
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(CtxParamTranscript, sb.String())
}

// formatSeconds renders a timestamp with the shortest representation that
// round-trips, so 9 stays "9" and 13.5 stays "13.5".
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
