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

// Package model defines the core data structures for the application.
// This file, `transient.go`, contains the in-memory types that flow through
// a single video-scan workflow execution: transcript segments produced by
// caption parsing or speech-to-text, the place mentions extracted by the
// language model, and the geocoded locations that make up the final
// itinerary. These objects are request-scoped; none of them is persisted in
// this form, and none is shared across requests.
package model

// TranscriptSegment is one timestamped piece of spoken or captioned text.
// Segments are ordered by start time. They are not required to be
// non-overlapping since source captions may overlap slightly.
type TranscriptSegment struct {
	Start float64 `json:"start"` // Start offset in fractional seconds, >= 0.
	End   float64 `json:"end"`   // End offset in fractional seconds, > Start.
	Text  string  `json:"text"`  // The caption or transcribed text for the span.
}

// CandidateMention is a single place reference found in the transcript by
// the mention extractor. Duplicates are legal: the same place mentioned
// twice in a video yields two independent entries.
type CandidateMention struct {
	Name         string       `json:"name"`              // The (spell-corrected) place name.
	Address      string       `json:"address,omitempty"` // Address as stated in the video, empty when not stated.
	Coordinates  *Coordinates `json:"coordinates"`       // Coordinates if the model knew them, otherwise null. Not trusted for geocoding.
	TimeStartSec float64      `json:"timeStartSec"`      // Start of the mention's time interval in seconds.
	TimeEndSec   float64      `json:"timeEndSec"`        // End of the mention's time interval in seconds.
	Mention      string       `json:"mention"`           // The verbatim transcript text that names the place.
	Context      string       `json:"context"`           // The surrounding sentence, for display and disambiguation.
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeocodedLocation is a CandidateMention plus the result of geocoding it.
// A mention that failed every geocoding attempt keeps its original fields
// with the three geocoding fields left nil; it is never dropped. The outer
// Coordinates shadows the mention's model-supplied one, so the serialized
// value always reflects the geocoder.
type GeocodedLocation struct {
	CandidateMention
	LocationName *string      `json:"locationName"` // The geocoder's formatted address, nil when unresolved.
	Coordinates  *Coordinates `json:"coordinates"`  // Resolved coordinates, nil when unresolved.
	PlaceID      *string      `json:"placeId"`      // The geocoding service's place identifier, nil when unresolved.
}

// GeoBounds is an axis-aligned bounding box derived once per request from
// the user's general locations. It is used only as a soft bias/filter while
// geocoding candidate mentions and is never persisted.
type GeoBounds struct {
	NorthEast Coordinates `json:"northeast"`
	SouthWest Coordinates `json:"southwest"`
}

// Contains reports whether the coordinate falls inside the box, edges
// inclusive.
func (b *GeoBounds) Contains(c Coordinates) bool {
	return c.Lat >= b.SouthWest.Lat && c.Lat <= b.NorthEast.Lat &&
		c.Lng >= b.SouthWest.Lng && c.Lng <= b.NorthEast.Lng
}

// ScanDebug carries the per-request processing statistics echoed back to
// the caller alongside the scan result.
type ScanDebug struct {
	SegmentCount     int `json:"segmentCount"`
	TranscriptLength int `json:"transcriptLength"`
	LocationsFound   int `json:"locationsFound"`
	GeocodedCount    int `json:"geocodedCount"` // Entries run through geocoding, resolved or not.
}

// ScanResult is the complete response contract of one pipeline run.
type ScanResult struct {
	GeneralLocations   []string           `json:"generalLocations"`   // Echo of the user-supplied region strings.
	Locations          []GeocodedLocation `json:"locations"`          // Geocoded itinerary, 1:1 with ExtractedLocations.
	Transcript         string             `json:"transcript"`         // The flattened "[start->end] text" blob.
	ExtractedLocations []CandidateMention `json:"extractedLocations"` // Raw mentions before geocoding.
	Debug              ScanDebug          `json:"debug"`
}
