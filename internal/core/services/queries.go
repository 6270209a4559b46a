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

// Package services contains the business logic for interacting with data
// sources. This file centralizes the BigQuery SQL strings used by the
// video service. The queries use fmt.Sprintf verbs as placeholders for
// the fully qualified table names and filter values injected at runtime.
package services

const (
	// QryFindVideoById retrieves a complete video record by its unique ID.
	QryFindVideoById = "SELECT * FROM `%s` WHERE id = '%s'"

	// QryListVideosByUser retrieves every video belonging to one user,
	// newest first.
	QryListVideosByUser = "SELECT * FROM `%s` WHERE user_id = '%s' ORDER BY created_at DESC"

	// QryListPublicVideos retrieves completed public videos for the
	// shared feed, newest first.
	QryListPublicVideos = "SELECT * FROM `%s` WHERE is_public = TRUE AND processing_status = 'completed' ORDER BY created_at DESC LIMIT %d"

	// QryFindLocationsByVideo retrieves a video's itinerary entries in
	// mention order.
	QryFindLocationsByVideo = "SELECT * FROM `%s` WHERE video_id = '%s' ORDER BY ordinal ASC"
)
