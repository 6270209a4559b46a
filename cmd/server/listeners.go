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

// This file attaches the ingestion workflow to the Pub/Sub listener for
// the video upload bucket and starts it.
package main

import (
	"context"

	"github.com/bfmcgo2/sortie-upload/internal/cloud"
	"github.com/bfmcgo2/sortie-upload/internal/core/services"
	"github.com/bfmcgo2/sortie-upload/internal/core/workflow"
)

// VideoUploadsListener is the key of the subscription receiving GCS
// finalize notifications for the source video bucket.
const VideoUploadsListener = "VideoUploads"

// SetupListeners wires the asynchronous ingestion path: every video that
// lands in the upload bucket is scanned and persisted in the background.
//
// Inputs:
//   - ctx: The root context governing the listener goroutines.
//   - config: The loaded application configuration.
//   - cloudClients: The initialized service clients, including listeners.
//   - videoService: The persistence service the workflow writes through.
func SetupListeners(ctx context.Context, config *cloud.Config, cloudClients *cloud.ServiceClients, videoService *services.VideoService) {
	ingestion := workflow.NewVideoIngestionPipeline(config, cloudClients, videoService)
	cloudClients.PubSubListeners[VideoUploadsListener].SetCommand(ingestion)
	cloudClients.PubSubListeners[VideoUploadsListener].Listen(ctx)
}
