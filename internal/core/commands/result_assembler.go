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
	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/core/model"
)

// ScanResultAssembler gathers the products of the scan chain into the
// response payload returned to the caller (or persisted by the ingestion
// workflow).
type ScanResultAssembler struct {
	cor.BaseCommand
}

func NewScanResultAssembler(name string) *ScanResultAssembler {
	cmd := &ScanResultAssembler{BaseCommand: *cor.NewBaseCommand(name)}
	cmd.InputParamName = CtxParamGeocoded
	return cmd
}

// Execute assembles the ScanResult and publishes it both under its own
// key and as the chain output.
func (c *ScanResultAssembler) Execute(context cor.Context) {
	geocoded := context.Get(c.GetInputParam()).([]model.GeocodedLocation)
	generalLocations := context.Get(CtxParamGeneralLocations).([]string)
	mentions := context.Get(CtxParamMentions).([]model.CandidateMention)
	transcript := context.Get(CtxParamTranscript).(string)
	segments := context.Get(CtxParamSegments).([]model.TranscriptSegment)

	result := &model.ScanResult{
		GeneralLocations:   generalLocations,
		Locations:          geocoded,
		Transcript:         transcript,
		ExtractedLocations: mentions,
		Debug: model.ScanDebug{
			SegmentCount:     len(segments),
			TranscriptLength: len(transcript),
			LocationsFound:   len(mentions),
			GeocodedCount:    len(geocoded),
		},
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(CtxParamScanResult, result)
	context.Add(c.GetOutputParam(), result)
}
