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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/core/model"
)

// The bracket-arrow format is load-bearing: the extraction prompt parses
// timestamps back out of these lines.
func TestTranscriptBuilderFormat(t *testing.T) {
	segments := []model.TranscriptSegment{
		{Start: 9, End: 13.5, Text: " We checked into the Guildhouse Hotel "},
		{Start: 21.25, End: 25, Text: "Then lunch at Reading Terminal Market."},
	}

	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(CtxParamSegments, segments)

	NewTranscriptBuilder("transcript-builder").Execute(ctx)
	require.False(t, ctx.HasErrors())

	transcript := ctx.Get(CtxParamTranscript).(string)
	assert.Equal(t,
		"[9->13.5] We checked into the Guildhouse Hotel\n[21.25->25] Then lunch at Reading Terminal Market.",
		transcript)
}

func TestTranscriptBuilderEmptySegments(t *testing.T) {
	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(CtxParamSegments, []model.TranscriptSegment{})

	NewTranscriptBuilder("transcript-builder").Execute(ctx)
	require.False(t, ctx.HasErrors())
	assert.Equal(t, "", ctx.Get(CtxParamTranscript).(string))
}
