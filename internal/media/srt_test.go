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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSRT = `1
00:00:09,000 --> 00:00:13,500
We checked into the Guildhouse Hotel
right in Center City.

2
00:00:21,250 --> 00:00:25,000
Then we grabbed lunch at Reading Terminal Market.
`

func TestParseSRT(t *testing.T) {
	segments := ParseSRT(sampleSRT)
	require.Len(t, segments, 2)

	assert.Equal(t, 9.0, segments[0].Start)
	assert.Equal(t, 13.5, segments[0].End)
	// Multi-line cue text is joined with a single space.
	assert.Equal(t, "We checked into the Guildhouse Hotel right in Center City.", segments[0].Text)

	assert.Equal(t, 21.25, segments[1].Start)
	assert.Equal(t, 25.0, segments[1].End)
}

func TestParseSRTHourComponent(t *testing.T) {
	srt := "1\n01:02:03,400 --> 01:02:05,000\nhello\n"
	segments := ParseSRT(srt)
	require.Len(t, segments, 1)
	assert.Equal(t, 3723.4, segments[0].Start)
}

func TestParseSRTWindowsLineEndings(t *testing.T) {
	srt := "1\r\n00:00:01,000 --> 00:00:02,000\r\nhello\r\n\r\n2\r\n00:00:03,000 --> 00:00:04,000\r\nworld\r\n"
	segments := ParseSRT(srt)
	require.Len(t, segments, 2)
	assert.Equal(t, "hello", segments[0].Text)
	assert.Equal(t, "world", segments[1].Text)
}

func TestParseSRTSkipsMalformedCues(t *testing.T) {
	srt := `1
not-a-timecode --> 00:00:02,000
broken

2
00:00:03,000 --> 00:00:04,000
kept

garbage block with no timing line
`
	segments := ParseSRT(srt)
	require.Len(t, segments, 1)
	assert.Equal(t, "kept", segments[0].Text)
}

func TestParseSRTEmptyInput(t *testing.T) {
	assert.Empty(t, ParseSRT(""))
	assert.Empty(t, ParseSRT("\n\n\n"))
}
