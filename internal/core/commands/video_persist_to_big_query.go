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
	"fmt"
	"log/slog"

	"github.com/bfmcgo2/sortie-upload/internal/cloud"
	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/core/model"
	"github.com/google/uuid"
)

// VideoPersister is the persistence boundary for processed videos,
// satisfied by services.VideoService.
type VideoPersister interface {
	Save(ctx context.Context, video *model.Video) error
}

// VideoPersistToBigQuery turns a completed scan into a persisted Video
// row plus one VideoLocation row per geocoded mention. It is the final
// command of the asynchronous ingestion workflow; the synchronous scan
// endpoint returns results without persisting.
type VideoPersistToBigQuery struct {
	cor.BaseCommand
	service VideoPersister
}

func NewVideoPersistToBigQuery(name string, service VideoPersister) *VideoPersistToBigQuery {
	cmd := &VideoPersistToBigQuery{BaseCommand: *cor.NewBaseCommand(name), service: service}
	cmd.InputParamName = CtxParamScanResult
	return cmd
}

// Execute builds the persistent records from the scan result and the GCS
// object the scan was triggered by.
func (c *VideoPersistToBigQuery) Execute(context cor.Context) {
	result := context.Get(c.GetInputParam()).(*model.ScanResult)
	gcsObject := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)

	video := model.NewVideo(uuid.NewString(), gcsObject.Name, gcsObject.MIMEType)
	video.GeneralLocations = result.GeneralLocations
	video.Transcript = result.Transcript
	video.ProcessingStatus = model.StatusCompleted
	video.VideoURL = fmt.Sprintf("gs://%s/%s", gcsObject.Bucket, gcsObject.Name)
	for i := range result.Locations {
		video.Locations = append(video.Locations, model.NewVideoLocation(video.ID, i, &result.Locations[i]))
	}

	if err := c.service.Save(context.GetContext(), video); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to persist video %s: %w", video.ID, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.Info("persisted scanned video", "id", video.ID, "locations", len(video.Locations))
	context.Add(CtxParamVideo, video)
	context.Add(c.GetOutputParam(), video)
}
