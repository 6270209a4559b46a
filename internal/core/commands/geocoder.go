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

// This file defines the command that resolves candidate mentions to map
// coordinates using the Google Maps Geocoding API.
//
// Logic Flow:
//  1. Once per scan, geocode up to the first 3 general locations
//     concurrently and build an axis-aligned bounding box over every
//     returned coordinate, expanded by a 0.1 degree margin on every side.
//     If none of them geocode, the scan proceeds without bounds.
//  2. For each mention, try queries in fixed priority order, stopping at
//     the first in-bounds hit: the mention's name (or the verbatim
//     mention text when no name was extracted), then the name suffixed
//     with each general location in turn, then the mention's stated
//     address if it has one.
//  3. Each query takes the first returned result. Out-of-bounds results
//     are skipped, except on the final query, where an out-of-bounds
//     result is accepted as a last resort. A lookup error is treated as
//     no match.
//  4. A mention that matches nothing keeps its original fields with the
//     geocoding fields null. The output is strictly 1:1 with the input,
//     in the same order.
package commands

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"googlemaps.github.io/maps"

	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/core/model"
)

// BoundsMarginDegrees is the padding added to every side of the computed
// bounding box, roughly 11 km.
const BoundsMarginDegrees = 0.1

// MaxBoundsSeeds caps how many general locations seed the bounding box.
const MaxBoundsSeeds = 3

// Geocoder is the geocoding service boundary, satisfied by *maps.Client.
type Geocoder interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GeocodeMentions resolves each candidate mention to coordinates, a
// formatted address, and a place identifier.
type GeocodeMentions struct {
	cor.BaseCommand
	geocoder Geocoder
	timeout  time.Duration
}

// NewGeocodeMentions creates the command. A zero timeout defaults to 10
// seconds per lookup.
func NewGeocodeMentions(name string, geocoder Geocoder, timeout time.Duration) *GeocodeMentions {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	cmd := &GeocodeMentions{
		BaseCommand: *cor.NewBaseCommand(name),
		geocoder:    geocoder,
		timeout:     timeout,
	}
	cmd.InputParamName = CtxParamMentions
	return cmd
}

// Execute geocodes every mention against the request's bounding box.
func (c *GeocodeMentions) Execute(chainCtx cor.Context) {
	mentions := chainCtx.Get(c.GetInputParam()).([]model.CandidateMention)
	generalLocations := chainCtx.Get(CtxParamGeneralLocations).([]string)
	ctx := chainCtx.GetContext()

	bounds := c.computeBounds(ctx, generalLocations)

	geocoded := make([]model.GeocodedLocation, 0, len(mentions))
	for _, mention := range mentions {
		geocoded = append(geocoded, c.resolveMention(ctx, mention, generalLocations, bounds))
	}

	c.GetSuccessCounter().Add(ctx, 1)
	chainCtx.Add(CtxParamGeocoded, geocoded)
}

// seedLookup issues one unbounded geocode and returns every result's
// coordinates. All results count toward the box, not just the first, so
// an ambiguous region still covers each of its candidates.
func (c *GeocodeMentions) seedLookup(ctx context.Context, query string) ([]model.Coordinates, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results, err := c.geocoder.Geocode(lookupCtx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		return nil, err
	}
	coords := make([]model.Coordinates, 0, len(results))
	for _, result := range results {
		coords = append(coords, model.Coordinates{
			Lat: result.Geometry.Location.Lat,
			Lng: result.Geometry.Location.Lng,
		})
	}
	return coords, nil
}

// lookup issues one bounded geocoding query and returns its first result.
func (c *GeocodeMentions) lookup(ctx context.Context, query string, bounds *model.GeoBounds) (*maps.GeocodingResult, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &maps.GeocodingRequest{Address: query}
	if bounds != nil {
		req.Bounds = &maps.LatLngBounds{
			NorthEast: maps.LatLng{Lat: bounds.NorthEast.Lat, Lng: bounds.NorthEast.Lng},
			SouthWest: maps.LatLng{Lat: bounds.SouthWest.Lat, Lng: bounds.SouthWest.Lng},
		}
	}

	results, err := c.geocoder.Geocode(lookupCtx, req)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// computeBounds geocodes the first few general locations concurrently and
// builds the padded covering box. The lookups are independent, so they
// are fired together and joined before any mention is resolved.
func (c *GeocodeMentions) computeBounds(ctx context.Context, generalLocations []string) *model.GeoBounds {
	seeds := generalLocations
	if len(seeds) > MaxBoundsSeeds {
		seeds = seeds[:MaxBoundsSeeds]
	}

	coords := make([]model.Coordinates, 0, len(seeds))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, seed := range seeds {
		wg.Add(1)
		go func(query string) {
			defer wg.Done()
			seedCoords, err := c.seedLookup(ctx, query)
			if err != nil {
				slog.Warn("failed to geocode general location", "query", query, "error", err)
				return
			}
			mu.Lock()
			coords = append(coords, seedCoords...)
			mu.Unlock()
		}(seed)
	}
	wg.Wait()

	if len(coords) == 0 {
		return nil
	}

	bounds := &model.GeoBounds{
		NorthEast: coords[0],
		SouthWest: coords[0],
	}
	for _, coord := range coords[1:] {
		if coord.Lat > bounds.NorthEast.Lat {
			bounds.NorthEast.Lat = coord.Lat
		}
		if coord.Lng > bounds.NorthEast.Lng {
			bounds.NorthEast.Lng = coord.Lng
		}
		if coord.Lat < bounds.SouthWest.Lat {
			bounds.SouthWest.Lat = coord.Lat
		}
		if coord.Lng < bounds.SouthWest.Lng {
			bounds.SouthWest.Lng = coord.Lng
		}
	}
	bounds.NorthEast.Lat += BoundsMarginDegrees
	bounds.NorthEast.Lng += BoundsMarginDegrees
	bounds.SouthWest.Lat -= BoundsMarginDegrees
	bounds.SouthWest.Lng -= BoundsMarginDegrees
	return bounds
}

// resolveMention walks the query priority list for one mention. The
// queries are sequential because each attempt only makes sense once the
// previous one has failed.
func (c *GeocodeMentions) resolveMention(
	ctx context.Context,
	mention model.CandidateMention,
	generalLocations []string,
	bounds *model.GeoBounds,
) model.GeocodedLocation {
	out := model.GeocodedLocation{CandidateMention: mention}

	// A mention without a cleaned-up name still carries the verbatim
	// transcript text, which is better than querying nothing.
	baseName := mention.Name
	if baseName == "" {
		baseName = mention.Mention
	}

	queries := make([]string, 0, len(generalLocations)+2)
	queries = append(queries, baseName)
	for _, general := range generalLocations {
		queries = append(queries, baseName+", "+general)
	}
	if mention.Address != "" {
		queries = append(queries, mention.Address)
	}

	for i, query := range queries {
		result, err := c.lookup(ctx, query, bounds)
		if err != nil {
			slog.Warn("geocode lookup failed, trying next query", "query", query, "error", err)
			continue
		}
		if result == nil {
			continue
		}

		coord := model.Coordinates{
			Lat: result.Geometry.Location.Lat,
			Lng: result.Geometry.Location.Lng,
		}
		lastQuery := i == len(queries)-1
		if bounds != nil && !bounds.Contains(coord) && !lastQuery {
			continue
		}

		out.LocationName = &result.FormattedAddress
		out.Coordinates = &coord
		out.PlaceID = &result.PlaceID
		return out
	}
	return out
}
