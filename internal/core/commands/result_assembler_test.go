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

func TestScanResultAssemblerDebugCounts(t *testing.T) {
	mentions := []model.CandidateMention{
		{Name: "The Guild House Hotel", TimeStartSec: 9, TimeEndSec: 13},
		{Name: "Some Place Nobody Knows", TimeStartSec: 30, TimeEndSec: 31},
	}
	geocoded := []model.GeocodedLocation{
		{CandidateMention: mentions[0], Coordinates: &model.Coordinates{Lat: 39.948, Lng: -75.163}},
		{CandidateMention: mentions[1]},
	}
	transcript := "[9->13] We checked into the Guildhouse Hotel"
	segments := []model.TranscriptSegment{{Start: 9, End: 13, Text: "We checked into the Guildhouse Hotel"}}

	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(CtxParamGeocoded, geocoded)
	ctx.Add(CtxParamGeneralLocations, []string{philly})
	ctx.Add(CtxParamMentions, mentions)
	ctx.Add(CtxParamTranscript, transcript)
	ctx.Add(CtxParamSegments, segments)

	NewScanResultAssembler("assembler").Execute(ctx)
	require.False(t, ctx.HasErrors())

	result := ctx.Get(CtxParamScanResult).(*model.ScanResult)
	assert.Equal(t, []string{philly}, result.GeneralLocations)
	assert.Equal(t, 1, result.Debug.SegmentCount)
	assert.Equal(t, len(transcript), result.Debug.TranscriptLength)
	assert.Equal(t, 2, result.Debug.LocationsFound)
	// The geocoded list is 1:1 with the mentions, so an unresolved entry
	// still counts.
	assert.Equal(t, 2, result.Debug.GeocodedCount)
	assert.Equal(t, result, ctx.Get(cor.CtxOut))
}
