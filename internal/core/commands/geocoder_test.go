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
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/core/model"
)

// fakeGeocoder answers queries from a fixed table and records the order
// they arrive in.
type fakeGeocoder struct {
	mu      sync.Mutex
	results map[string][]maps.GeocodingResult
	errs    map[string]error
	queries []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, r.Address)
	f.mu.Unlock()
	if err, ok := f.errs[r.Address]; ok {
		return nil, err
	}
	return f.results[r.Address], nil
}

func geoResult(address string, placeID string, lat float64, lng float64) []maps.GeocodingResult {
	return []maps.GeocodingResult{{
		FormattedAddress: address,
		PlaceID:          placeID,
		Geometry: maps.AddressGeometry{
			Location: maps.LatLng{Lat: lat, Lng: lng},
		},
	}}
}

const philly = "Philadelphia, PA, USA"

// phillyGeocoder seeds the fake with the general location so bounds are
// computed around Center City.
func phillyGeocoder() *fakeGeocoder {
	return &fakeGeocoder{
		results: map[string][]maps.GeocodingResult{
			philly: geoResult("Philadelphia, PA, USA", "ChIJ_philly", 39.9526, -75.1652),
		},
		errs: map[string]error{},
	}
}

func runGeocode(t *testing.T, geocoder Geocoder, mentions []model.CandidateMention, generals []string) []model.GeocodedLocation {
	t.Helper()
	ctx := cor.NewBaseContext(context.Background())
	ctx.Add(CtxParamMentions, mentions)
	ctx.Add(CtxParamGeneralLocations, generals)

	NewGeocodeMentions("geocoder", geocoder, 0).Execute(ctx)
	require.False(t, ctx.HasErrors())
	return ctx.Get(CtxParamGeocoded).([]model.GeocodedLocation)
}

func TestGeocodeInBoundsFirstQueryWins(t *testing.T) {
	geocoder := phillyGeocoder()
	geocoder.results["The Guild House Hotel"] = geoResult("1307 Locust St, Philadelphia, PA 19107, USA", "ChIJ_guild", 39.948, -75.163)

	mention := model.CandidateMention{Name: "The Guild House Hotel", TimeStartSec: 9, TimeEndSec: 13}
	out := runGeocode(t, geocoder, []model.CandidateMention{mention}, []string{philly})

	require.Len(t, out, 1)
	require.NotNil(t, out[0].Coordinates)
	assert.InDelta(t, 39.948, out[0].Coordinates.Lat, 1e-9)
	assert.InDelta(t, -75.163, out[0].Coordinates.Lng, 1e-9)
	assert.Equal(t, "ChIJ_guild", *out[0].PlaceID)
	assert.Equal(t, "1307 Locust St, Philadelphia, PA 19107, USA", *out[0].LocationName)
	// The time interval carried through unchanged.
	assert.Equal(t, 9.0, out[0].TimeStartSec)
	assert.Equal(t, 13.0, out[0].TimeEndSec)
}

// An out-of-bounds hit on the bare name is rejected; the name+region
// query resolves inside the box.
func TestGeocodeOutOfBoundsFallsToRegionQuery(t *testing.T) {
	geocoder := phillyGeocoder()
	// "Flavors" alone resolves to a restaurant in Mumbai.
	geocoder.results["Flavors"] = geoResult("Flavors, Mumbai, India", "ChIJ_mumbai", 19.076, 72.877)
	geocoder.results["Flavors, "+philly] = geoResult("Flavors, Philadelphia, PA, USA", "ChIJ_flavors", 39.95, -75.16)

	mention := model.CandidateMention{Name: "Flavors", TimeStartSec: 1, TimeEndSec: 2}
	out := runGeocode(t, geocoder, []model.CandidateMention{mention}, []string{philly})

	require.Len(t, out, 1)
	require.NotNil(t, out[0].PlaceID)
	assert.Equal(t, "ChIJ_flavors", *out[0].PlaceID)
}

// When the final query is the only one that answers at all, its result is
// accepted even outside the bounding box.
func TestGeocodeLastResortAcceptsOutOfBounds(t *testing.T) {
	geocoder := phillyGeocoder()
	geocoder.results["123 Far Away Rd"] = geoResult("123 Far Away Rd, Denver, CO, USA", "ChIJ_denver", 39.739, -104.99)

	mention := model.CandidateMention{Name: "Mystery Cafe", Address: "123 Far Away Rd", TimeStartSec: 1, TimeEndSec: 2}
	out := runGeocode(t, geocoder, []model.CandidateMention{mention}, []string{philly})

	require.Len(t, out, 1)
	require.NotNil(t, out[0].PlaceID)
	assert.Equal(t, "ChIJ_denver", *out[0].PlaceID)
}

func TestGeocodeLookupErrorsAreNotFatal(t *testing.T) {
	geocoder := phillyGeocoder()
	geocoder.errs["Broken Spot"] = errors.New("OVER_QUERY_LIMIT")
	geocoder.results["Broken Spot, "+philly] = geoResult("Broken Spot, Philadelphia, PA, USA", "ChIJ_broken", 39.95, -75.16)

	mention := model.CandidateMention{Name: "Broken Spot", TimeStartSec: 1, TimeEndSec: 2}
	out := runGeocode(t, geocoder, []model.CandidateMention{mention}, []string{philly})

	require.Len(t, out, 1)
	require.NotNil(t, out[0].PlaceID)
	assert.Equal(t, "ChIJ_broken", *out[0].PlaceID)
}

// Unresolvable mentions keep their fields with null geocoding data and
// the output stays 1:1 with the input, in order.
func TestGeocodeUnresolvedMentionKeptWithNulls(t *testing.T) {
	geocoder := phillyGeocoder()
	geocoder.results["The Guild House Hotel"] = geoResult("1307 Locust St, Philadelphia, PA 19107, USA", "ChIJ_guild", 39.948, -75.163)

	mentions := []model.CandidateMention{
		{Name: "The Guild House Hotel", TimeStartSec: 9, TimeEndSec: 13},
		{Name: "Some Place Nobody Knows", TimeStartSec: 30, TimeEndSec: 31},
	}
	out := runGeocode(t, geocoder, mentions, []string{philly})

	require.Len(t, out, 2)
	assert.NotNil(t, out[0].Coordinates)
	assert.Equal(t, "Some Place Nobody Knows", out[1].Name)
	assert.Nil(t, out[1].Coordinates)
	assert.Nil(t, out[1].LocationName)
	assert.Nil(t, out[1].PlaceID)
}

// Without any geocodable general location there are no bounds, and the
// first answer wins wherever it is.
func TestGeocodeWithoutBounds(t *testing.T) {
	geocoder := &fakeGeocoder{
		results: map[string][]maps.GeocodingResult{
			"Eiffel Tower": geoResult("Champ de Mars, Paris, France", "ChIJ_eiffel", 48.8584, 2.2945),
		},
		errs: map[string]error{"Nowhere Land": errors.New("ZERO_RESULTS")},
	}

	mention := model.CandidateMention{Name: "Eiffel Tower", TimeStartSec: 1, TimeEndSec: 2}
	out := runGeocode(t, geocoder, []model.CandidateMention{mention}, []string{"Nowhere Land"})

	require.Len(t, out, 1)
	require.NotNil(t, out[0].PlaceID)
	assert.Equal(t, "ChIJ_eiffel", *out[0].PlaceID)
}

// Every result of a seed geocode widens the box, not just the first, so
// an ambiguous region name still covers each of its candidates.
func TestGeocodeBoundsCoverAllSeedResults(t *testing.T) {
	springfield := append(
		geoResult("Springfield, IL, USA", "ChIJ_spring_il", 10, 0),
		geoResult("Springfield, MA, USA", "ChIJ_spring_ma", 20, 0)...)
	geocoder := &fakeGeocoder{
		results: map[string][]maps.GeocodingResult{
			"Springfield, USA": springfield,
			"Lincoln Diner":    geoResult("Lincoln Diner, Springfield, MA, USA", "ChIJ_diner", 19, 0),
		},
		errs: map[string]error{},
	}

	mention := model.CandidateMention{Name: "Lincoln Diner", TimeStartSec: 1, TimeEndSec: 2}
	out := runGeocode(t, geocoder, []model.CandidateMention{mention}, []string{"Springfield, USA"})

	require.Len(t, out, 1)
	require.NotNil(t, out[0].Coordinates)
	assert.Equal(t, "ChIJ_diner", *out[0].PlaceID)
	assert.InDelta(t, 19.0, out[0].Coordinates.Lat, 1e-9)
}

// A mention the extractor returned without a name uses the verbatim
// mention text as the base query instead of an empty string.
func TestGeocodeEmptyNameFallsBackToMentionText(t *testing.T) {
	geocoder := phillyGeocoder()
	geocoder.results["that rooftop bar by City Hall"] = geoResult("Assembly Rooftop Lounge, Philadelphia, PA, USA", "ChIJ_rooftop", 39.955, -75.164)

	mention := model.CandidateMention{Mention: "that rooftop bar by City Hall", TimeStartSec: 3, TimeEndSec: 6}
	out := runGeocode(t, geocoder, []model.CandidateMention{mention}, []string{philly})

	require.Len(t, out, 1)
	require.NotNil(t, out[0].PlaceID)
	assert.Equal(t, "ChIJ_rooftop", *out[0].PlaceID)
	assert.NotContains(t, geocoder.queries, "")
}

func TestGeocodeBoundsUseAtMostThreeSeeds(t *testing.T) {
	geocoder := phillyGeocoder()
	generals := []string{philly, "New York, NY", "Boston, MA", "Chicago, IL"}

	runGeocode(t, geocoder, nil, generals)

	seedQueries := 0
	for _, q := range geocoder.queries {
		for _, g := range generals {
			if q == g {
				seedQueries++
			}
		}
	}
	assert.Equal(t, MaxBoundsSeeds, seedQueries)
}
