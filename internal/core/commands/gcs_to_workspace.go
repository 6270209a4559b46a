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

// This file defines the command bridging the GCS-based ingestion trigger
// and the local-file-based scan pipeline: it creates a per-scan workspace
// and streams the stored video into it.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/bfmcgo2/sortie-upload/internal/cloud"
	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/media"
)

// VideoFileName is the fixed name the raw upload is stored under inside
// each scan workspace.
const VideoFileName = "input_video"

// GCSToWorkspace downloads a stored video into a fresh scan workspace and
// seeds the context keys the scan chain reads.
type GCSToWorkspace struct {
	cor.BaseCommand
	client *storage.Client
}

func NewGCSToWorkspace(name string, client *storage.Client) *GCSToWorkspace {
	return &GCSToWorkspace{BaseCommand: *cor.NewBaseCommand(name), client: client}
}

// Execute streams the object into the workspace. The workspace directory
// is registered on the context so it is removed when the scan finishes.
func (c *GCSToWorkspace) Execute(context cor.Context) {
	msg := context.Get(c.GetInputParam()).(*cloud.GCSObject)

	workDir, err := media.CreateWorkspace(uuid.NewString())
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	context.AddTempDir(workDir)

	reader, err := c.client.Bucket(msg.Bucket).Object(msg.Name).NewReader(context.GetContext())
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create GCS reader for gs://%s/%s: %w", msg.Bucket, msg.Name, err))
		return
	}
	defer func() {
		if err := reader.Close(); err != nil {
			slog.Warn("failed to close GCS reader", "error", err)
		}
	}()

	videoPath := filepath.Join(workDir, VideoFileName)
	videoFile, err := os.Create(videoPath)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("could not create workspace video file: %w", err))
		return
	}

	written, err := io.Copy(videoFile, reader)
	_ = videoFile.Close()
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to copy GCS object to workspace, %d bytes written: %w", written, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.Info("downloaded video for scan",
		"bucket", msg.Bucket, "object", msg.Name, "bytes", written, "workspace", workDir)

	context.Add(CtxParamWorkDir, workDir)
	context.Add(CtxParamVideoPath, videoPath)
	context.Add(CtxParamGeneralLocations, msg.GeneralLocations)
	context.Add(c.GetOutputParam(), videoPath)
}
