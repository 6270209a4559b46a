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

// This file holds the application's startup wiring: a state container for
// the shared dependencies, the singleton configuration loader, and the
// initialization of cloud clients, services, and workflows.
package main

import (
	"context"
	"log"
	"os"

	"github.com/bfmcgo2/sortie-upload/internal/cloud"
	"github.com/bfmcgo2/sortie-upload/internal/core/services"
	"github.com/bfmcgo2/sortie-upload/internal/core/workflow"
)

// StateManager holds the shared dependencies for the server process so
// handlers and listeners get them injected instead of reaching for
// globals.
type StateManager struct {
	config       *cloud.Config
	cloud        *cloud.ServiceClients
	videoService *services.VideoService
	scanPipeline *workflow.VideoScanWorkflow
}

var state = &StateManager{}

// SetupOS sets the environment variables the configuration loader reads to
// locate the TOML files. The runtime defaults to "local" here; deployments
// override GCP_RUNTIME in their environment.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig loads the application configuration once and caches it.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}

// InitState builds the full dependency graph: cloud service clients, the
// video persistence service, the synchronous scan pipeline used by the
// scans endpoint, and the Pub/Sub listeners for asynchronous ingestion.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	state.videoService = &services.VideoService{
		BigqueryClient: cloudClients.BigQueryClient,
		StorageClient:  cloudClients.StorageClient,
		IAMClient:      cloudClients.IAMClient,
		SignerEmail:    config.Application.SignerServiceAccountEmail,
		DatasetName:    config.BigQueryDataSource.DatasetName,
		VideoTable:     config.BigQueryDataSource.VideoTable,
		LocationTable:  config.BigQueryDataSource.LocationTable,
		VideoBucket:    config.Storage.VideoBucket,
	}

	state.scanPipeline = workflow.NewVideoScanPipeline(config, cloudClients)

	SetupListeners(ctx, config, cloudClients, state.videoService)
}
