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

// This file defines the VideoService, the data access layer for processed
// videos: BigQuery reads and writes for video and location records, and
// signed GCS URLs for streaming the stored files.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/bfmcgo2/sortie-upload/internal/core/model"
)

// DefaultListLimit caps the public feed query.
const DefaultListLimit = 100

// VideoService encapsulates the clients and table names for video
// persistence and retrieval.
type VideoService struct {
	BigqueryClient *bigquery.Client
	StorageClient  *storage.Client
	IAMClient      *credentials.IamCredentialsClient
	SignerEmail    string
	DatasetName    string
	VideoTable     string
	LocationTable  string
	VideoBucket    string
}

// GetVideoFQN returns the queryable fully qualified name of the video
// table, with the project:dataset colon replaced for standard SQL.
func (s *VideoService) GetVideoFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.VideoTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// GetLocationFQN returns the queryable fully qualified name of the
// location table.
func (s *VideoService) GetLocationFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.LocationTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// Save streams the video record and its locations into BigQuery. The
// location rows go in one batch; the inserter maps struct fields to
// columns through the bigquery tags on the models.
func (s *VideoService) Save(ctx context.Context, video *model.Video) error {
	videoInserter := s.BigqueryClient.Dataset(s.DatasetName).Table(s.VideoTable).Inserter()
	if err := videoInserter.Put(ctx, video); err != nil {
		return fmt.Errorf("bigquery insert failed for video '%s': %w", video.ID, err)
	}

	if len(video.Locations) == 0 {
		return nil
	}
	locationInserter := s.BigqueryClient.Dataset(s.DatasetName).Table(s.LocationTable).Inserter()
	if err := locationInserter.Put(ctx, video.Locations); err != nil {
		return fmt.Errorf("bigquery insert failed for locations of video '%s': %w", video.ID, err)
	}
	return nil
}

// Get retrieves a single video by ID, including its itinerary.
func (s *VideoService) Get(ctx context.Context, id string) (*model.Video, error) {
	queryText := fmt.Sprintf(QryFindVideoById, s.GetVideoFQN(), id)
	itr, err := s.BigqueryClient.Query(queryText).Read(ctx)
	if err != nil {
		return nil, err
	}
	video := &model.Video{}
	if err := itr.Next(video); err != nil {
		return nil, err
	}

	locations, err := s.GetLocations(ctx, id)
	if err != nil {
		return nil, err
	}
	video.Locations = locations
	return video, nil
}

// GetLocations retrieves a video's itinerary entries in mention order.
func (s *VideoService) GetLocations(ctx context.Context, videoID string) ([]*model.VideoLocation, error) {
	queryText := fmt.Sprintf(QryFindLocationsByVideo, s.GetLocationFQN(), videoID)
	itr, err := s.BigqueryClient.Query(queryText).Read(ctx)
	if err != nil {
		return nil, err
	}

	locations := make([]*model.VideoLocation, 0)
	for {
		location := &model.VideoLocation{}
		err := itr.Next(location)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, nil
}

// ListByUser retrieves all of one user's videos, newest first, without
// their itineraries.
func (s *VideoService) ListByUser(ctx context.Context, userID string) ([]*model.Video, error) {
	queryText := fmt.Sprintf(QryListVideosByUser, s.GetVideoFQN(), userID)
	return s.listVideos(ctx, queryText)
}

// ListPublic retrieves completed public videos for the shared feed.
func (s *VideoService) ListPublic(ctx context.Context) ([]*model.Video, error) {
	queryText := fmt.Sprintf(QryListPublicVideos, s.GetVideoFQN(), DefaultListLimit)
	return s.listVideos(ctx, queryText)
}

func (s *VideoService) listVideos(ctx context.Context, queryText string) ([]*model.Video, error) {
	itr, err := s.BigqueryClient.Query(queryText).Read(ctx)
	if err != nil {
		return nil, err
	}

	videos := make([]*model.Video, 0)
	for {
		video := &model.Video{}
		err := itr.Next(video)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, nil
}

// GenerateSignedURL creates a time-limited V4 signed URL for streaming a
// stored video directly from GCS.
func (s *VideoService) GenerateSignedURL(_ context.Context, objectName string, expires time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(expires),
		GoogleAccessID: s.SignerEmail,
	}
	u, err := s.StorageClient.Bucket(s.VideoBucket).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).SignedURL(%q): %w", s.VideoBucket, objectName, err)
	}
	return u, nil
}
