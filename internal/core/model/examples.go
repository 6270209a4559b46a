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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides factory functions for hardcoded example instances
// of the data models. The examples are embedded into the mention-extraction
// prompt as few-shot guidance so the language model returns JSON that is
// consistent, correctly shaped, and parsable.
package model

// MentionList is the object shape the mention extractor asks the language
// model to return: a single JSON object holding a `locations` array. The
// `items` and `results` keys are legacy synonyms that earlier prompt
// revisions produced; the decoder accepts them in that order as a
// compatibility shim for upstream prompt/response drift.
type MentionList struct {
	Locations []CandidateMention `json:"locations,omitempty"`
	Items     []CandidateMention `json:"items,omitempty"`
	Results   []CandidateMention `json:"results,omitempty"`
}

// Mentions returns the first populated key, honoring the
// locations > items > results precedence.
func (m *MentionList) Mentions() []CandidateMention {
	if len(m.Locations) > 0 {
		return m.Locations
	}
	if len(m.Items) > 0 {
		return m.Items
	}
	return m.Results
}

// GetExampleMention creates a sample CandidateMention used for few-shot
// prompting. The example intentionally demonstrates a misspelling being
// corrected ("Guild House" spoken, canonical name returned) so the model
// understands the correction requirement.
func GetExampleMention() *CandidateMention {
	return &CandidateMention{
		Name:         "The Guild House Hotel",
		Address:      "1307 Locust St, Philadelphia, PA 19107",
		Coordinates:  &Coordinates{Lat: 39.9480, Lng: -75.1632},
		TimeStartSec: 9,
		TimeEndSec:   13,
		Mention:      "we checked into the Guildhouse Hotel",
		Context:      "After the flight we checked into the Guildhouse Hotel right in Center City.",
	}
}

// GetExampleMentionList creates a complete example response object for the
// mention-extraction prompt, including a second entry without an address or
// coordinates to show that both fields are optional.
func GetExampleMentionList() *MentionList {
	out := &MentionList{Locations: make([]CandidateMention, 0)}
	out.Locations = append(out.Locations, *GetExampleMention())
	out.Locations = append(out.Locations, CandidateMention{
		Name:         "Reading Terminal Market",
		TimeStartSec: 42.5,
		TimeEndSec:   47,
		Mention:      "grabbed lunch at Redding Terminal Market",
		Context:      "Then we grabbed lunch at Redding Terminal Market before the museum.",
	})
	return out
}
