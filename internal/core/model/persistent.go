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
// This file, `persistent.go`, contains the types that are written to the
// BigQuery dataset once a scan has completed: the video record itself and
// the geocoded locations attached to it. The `bigquery` struct tags map the
// fields onto table columns for the BigQuery client's automatic marshalling.
package model

import "time"

// ProcessingStatus values for a stored Video record.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// VideoLocation is one persisted, geocoded itinerary entry belonging to a
// Video. Ordinal preserves the mention order from the scan; the geocoding
// fields are nullable for mentions that never resolved.
type VideoLocation struct {
	VideoID      string   `json:"video_id" bigquery:"video_id"`
	Ordinal      int      `json:"ordinal" bigquery:"ordinal"`
	Name         string   `json:"name" bigquery:"name"`
	Address      string   `json:"address" bigquery:"address"`
	TimeStartSec float64  `json:"time_start_sec" bigquery:"time_start_sec"`
	TimeEndSec   float64  `json:"time_end_sec" bigquery:"time_end_sec"`
	Mention      string   `json:"mention" bigquery:"mention"`
	Context      string   `json:"context" bigquery:"context"`
	LocationName *string  `json:"location_name" bigquery:"location_name"`
	Lat          *float64 `json:"lat" bigquery:"lat"`
	Lng          *float64 `json:"lng" bigquery:"lng"`
	PlaceID      *string  `json:"place_id" bigquery:"place_id"`
}

// Video is a processed travel video as stored in the dataset. The raw bytes
// live in GCS (VideoURL); this record holds the scan output and the
// ownership/visibility fields used for retrieval by id, user, or the public
// flag.
type Video struct {
	ID               string           `json:"id" bigquery:"id"`
	UserID           string           `json:"user_id" bigquery:"user_id"`
	UserEmail        string           `json:"user_email" bigquery:"user_email"`
	UserName         string           `json:"user_name" bigquery:"user_name"`
	Title            string           `json:"title" bigquery:"title"`
	Description      string           `json:"description" bigquery:"description"`
	VideoFilename    string           `json:"video_filename" bigquery:"video_filename"`
	VideoFileType    string           `json:"video_file_type" bigquery:"video_file_type"`
	VideoFileSize    int64            `json:"video_file_size" bigquery:"video_file_size"`
	VideoURL         string           `json:"video_url" bigquery:"video_url"`
	GeneralLocations []string         `json:"general_locations" bigquery:"general_locations"`
	Transcript       string           `json:"transcript" bigquery:"transcript"`
	ProcessingStatus string           `json:"processing_status" bigquery:"processing_status"`
	IsPublic         bool             `json:"is_public" bigquery:"is_public"`
	CreatedAt        time.Time        `json:"created_at" bigquery:"created_at"`
	Locations        []*VideoLocation `json:"locations,omitempty" bigquery:"-"`
}

// NewVideo creates a Video record for a stored upload with the creation
// time set and status Processing. Scan output fields are filled in when
// the ingestion workflow completes.
func NewVideo(id string, filename string, fileType string) *Video {
	return &Video{
		ID:               id,
		VideoFilename:    filename,
		VideoFileType:    fileType,
		ProcessingStatus: StatusProcessing,
		CreatedAt:        time.Now(),
		Locations:        make([]*VideoLocation, 0),
	}
}

// NewVideoLocation converts a transient GeocodedLocation into its persisted
// row form for the given video and position.
func NewVideoLocation(videoID string, ordinal int, g *GeocodedLocation) *VideoLocation {
	out := &VideoLocation{
		VideoID:      videoID,
		Ordinal:      ordinal,
		Name:         g.Name,
		Address:      g.Address,
		TimeStartSec: g.TimeStartSec,
		TimeEndSec:   g.TimeEndSec,
		Mention:      g.Mention,
		Context:      g.Context,
		LocationName: g.LocationName,
		PlaceID:      g.PlaceID,
	}
	if g.Coordinates != nil {
		lat := g.Coordinates.Lat
		lng := g.Coordinates.Lng
		out.Lat = &lat
		out.Lng = &lng
	}
	return out
}
