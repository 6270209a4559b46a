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
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/core/model"
)

type fakeGenerator struct {
	gotPrompt string
	reply     string
	err       error
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.gotPrompt = prompt
	return f.reply, f.err
}

var mentionTemplate = template.Must(template.New("mention").Parse(
	"Regions: {{.GENERAL_LOCATIONS}}\nExample: {{.EXAMPLE_JSON}}\nTranscript:\n{{.TRANSCRIPT}}"))

func newExtractorContext(transcript string) cor.Context {
	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(CtxParamTranscript, transcript)
	ctx.Add(CtxParamGeneralLocations, []string{"Philadelphia, PA, USA"})
	return ctx
}

func TestMentionExtractorParsesLocations(t *testing.T) {
	gen := &fakeGenerator{reply: `{"locations": [
		{"name": "The Guild House Hotel", "address": "1307 Locust St, Philadelphia, PA",
		 "timeStartSec": 9, "timeEndSec": 13,
		 "mention": "we checked into the Guildhouse Hotel",
		 "context": "We checked into the Guildhouse Hotel right in Center City."}
	]}`}

	ctx := newExtractorContext("[9->13] We checked into the Guildhouse Hotel")
	NewMentionExtractor("mention-extractor", gen, mentionTemplate).Execute(ctx)
	require.False(t, ctx.HasErrors())

	mentions := ctx.Get(CtxParamMentions).([]model.CandidateMention)
	require.Len(t, mentions, 1)
	assert.Equal(t, "The Guild House Hotel", mentions[0].Name)
	assert.Equal(t, 9.0, mentions[0].TimeStartSec)
	assert.Equal(t, 13.0, mentions[0].TimeEndSec)

	// The prompt carried the transcript and the region context.
	assert.Contains(t, gen.gotPrompt, "Philadelphia, PA, USA")
	assert.Contains(t, gen.gotPrompt, "[9->13] We checked into the Guildhouse Hotel")
}

// Coordinates supplied by the model ride along on the mention; the
// geocoder decides separately whether the place resolves.
func TestMentionExtractorCarriesModelCoordinates(t *testing.T) {
	gen := &fakeGenerator{reply: `{"locations": [
		{"name": "Liberty Bell", "coordinates": {"lat": 39.9496, "lng": -75.1503},
		 "timeStartSec": 5, "timeEndSec": 8,
		 "mention": "the Liberty Bell", "context": "We walked over to see the Liberty Bell."}
	]}`}

	ctx := newExtractorContext("[5->8] We walked over to see the Liberty Bell")
	NewMentionExtractor("mention-extractor", gen, mentionTemplate).Execute(ctx)
	require.False(t, ctx.HasErrors())

	mentions := ctx.Get(CtxParamMentions).([]model.CandidateMention)
	require.Len(t, mentions, 1)
	require.NotNil(t, mentions[0].Coordinates)
	assert.InDelta(t, 39.9496, mentions[0].Coordinates.Lat, 1e-9)
	assert.InDelta(t, -75.1503, mentions[0].Coordinates.Lng, 1e-9)
}

func TestMentionExtractorAcceptsLegacyKeys(t *testing.T) {
	for _, key := range []string{"items", "results"} {
		gen := &fakeGenerator{reply: `{"` + key + `": [{"name": "Reading Terminal Market", "timeStartSec": 21, "timeEndSec": 25, "mention": "lunch at Reading Terminal Market", "context": "Then lunch."}]}`}

		ctx := newExtractorContext("[21->25] Then lunch at Reading Terminal Market")
		NewMentionExtractor("mention-extractor", gen, mentionTemplate).Execute(ctx)
		require.False(t, ctx.HasErrors())

		mentions := ctx.Get(CtxParamMentions).([]model.CandidateMention)
		require.Len(t, mentions, 1, "key %s", key)
		assert.Equal(t, "Reading Terminal Market", mentions[0].Name)
	}
}

// A garbage reply is not an error: the scan continues with no mentions.
func TestMentionExtractorUnparseableReply(t *testing.T) {
	gen := &fakeGenerator{reply: "I could not find any locations in this video."}

	ctx := newExtractorContext("[0->1] nothing here")
	NewMentionExtractor("mention-extractor", gen, mentionTemplate).Execute(ctx)

	require.False(t, ctx.HasErrors())
	assert.Empty(t, ctx.Get(CtxParamMentions).([]model.CandidateMention))
}

func TestMentionExtractorClampsInvertedInterval(t *testing.T) {
	gen := &fakeGenerator{reply: `{"locations": [{"name": "Pat's King of Steaks", "timeStartSec": 40, "timeEndSec": 40, "mention": "Pat's", "context": "Cheesesteak at Pat's."}]}`}

	ctx := newExtractorContext("[40->44] Cheesesteak at Pat's")
	NewMentionExtractor("mention-extractor", gen, mentionTemplate).Execute(ctx)
	require.False(t, ctx.HasErrors())

	mentions := ctx.Get(CtxParamMentions).([]model.CandidateMention)
	require.Len(t, mentions, 1)
	assert.Equal(t, 41.0, mentions[0].TimeEndSec)
}
