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
	"strconv"
	"strings"

	"github.com/bfmcgo2/sortie-upload/internal/core/model"
)

const srtTimeSeparator = " --> "

// ParseSRT converts SRT cue text into ordered transcript segments. Cues
// are blocks separated by blank lines: an index line, a timing line of
// the form `HH:MM:SS,mmm --> HH:MM:SS,mmm`, then one or more text lines.
// Malformed cues are skipped so one bad block does not lose the rest of
// the captions.
func ParseSRT(text string) []model.TranscriptSegment {
	segments := make([]model.TranscriptSegment, 0)

	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	for _, block := range strings.Split(normalized, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		// The timing line is usually line 2, after the cue index, but some
		// files omit the index.
		timingIdx := -1
		for i, line := range lines {
			if strings.Contains(line, srtTimeSeparator) {
				timingIdx = i
				break
			}
		}
		if timingIdx < 0 || timingIdx == len(lines)-1 {
			continue
		}

		parts := strings.SplitN(lines[timingIdx], srtTimeSeparator, 2)
		start, err := parseSRTTimecode(strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}
		end, err := parseSRTTimecode(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}

		cueText := strings.TrimSpace(strings.Join(lines[timingIdx+1:], " "))
		if cueText == "" {
			continue
		}

		segments = append(segments, model.TranscriptSegment{
			Start: start,
			End:   end,
			Text:  cueText,
		})
	}
	return segments
}

// parseSRTTimecode converts `HH:MM:SS,mmm` to fractional seconds.
func parseSRTTimecode(tc string) (float64, error) {
	// Some encoders emit a dot instead of a comma before milliseconds.
	tc = strings.ReplaceAll(tc, ",", ".")
	parts := strings.Split(tc, ":")
	if len(parts) != 3 {
		return 0, strconv.ErrSyntax
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}
