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

package workflow

import (
	"cloud.google.com/go/storage"

	"github.com/bfmcgo2/sortie-upload/internal/cloud"
	"github.com/bfmcgo2/sortie-upload/internal/core/commands"
	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/core/services"
)

// VideoIngestionWorkflow is the asynchronous path: a GCS bucket
// notification arrives over Pub/Sub, the stored video is scanned, and
// the result is persisted. The scan workflow nests inside this chain as
// a single command.
type VideoIngestionWorkflow struct {
	cor.BaseCommand
	storageClient *storage.Client
	scanWorkflow  *VideoScanWorkflow
	videoService  *services.VideoService
	chain         cor.Chain
}

// Execute runs the ingestion chain over the shared context.
func (w *VideoIngestionWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *VideoIngestionWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Parse the bucket notification into a GCSObject, including the
	// general locations from object metadata.
	out.AddCommand(commands.NewScanTriggerToGCSObject("scan-trigger-reader"))

	// Download into a fresh workspace and seed the scan context keys.
	out.AddCommand(commands.NewGCSToWorkspace("gcs-to-workspace", w.storageClient))

	// The full scan pipeline runs as one nested command.
	out.AddCommand(w.scanWorkflow)

	// Persist the video record and its itinerary.
	out.AddCommand(commands.NewVideoPersistToBigQuery("write-to-bigquery", w.videoService))

	w.chain = out
}

// NewVideoIngestionWorkflow assembles the ingestion chain around an
// existing scan workflow.
func NewVideoIngestionWorkflow(
	storageClient *storage.Client,
	scanWorkflow *VideoScanWorkflow,
	videoService *services.VideoService,
) *VideoIngestionWorkflow {
	w := &VideoIngestionWorkflow{
		BaseCommand:   *cor.NewBaseCommand("video-ingestion-pipeline"),
		storageClient: storageClient,
		scanWorkflow:  scanWorkflow,
		videoService:  videoService,
	}
	w.initializeChain()
	return w
}

// NewVideoIngestionPipeline wires the ingestion workflow to the
// configured service clients.
func NewVideoIngestionPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	videoService *services.VideoService,
) *VideoIngestionWorkflow {
	return NewVideoIngestionWorkflow(
		serviceClients.StorageClient,
		NewVideoScanPipeline(config, serviceClients),
		videoService,
	)
}
