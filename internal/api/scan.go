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

// Package api contains the HTTP route handlers for the server. This file
// defines the synchronous scan endpoint: a client uploads a video together
// with its general locations, the full scan pipeline runs inline, and the
// itinerary comes back in the response body.
//
// Logic Flow:
//  1. Validate the multipart request: a "file" part and a non-empty
//     "generalLocations" JSON array are both required (400 otherwise),
//     before any external service is touched.
//  2. Save the upload into a fresh scan workspace and sniff its magic
//     bytes; anything that is not a video is rejected with 400.
//  3. Seed a chain context with the workspace, video path, and general
//     locations, then execute the scan workflow synchronously.
//  4. Map pipeline failures onto the API contract: an oversized file whose
//     audio compression failed becomes 413, a speech-to-text outage becomes
//     500, and anything else is a generic 500 with the error message.
//  5. On success, return the assembled scan result as JSON. The workspace
//     is removed on every exit path via the chain context's Close.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/bfmcgo2/sortie-upload/internal/core/commands"
	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/media"
)

// sniffLen is how many leading bytes the filetype matchers need.
const sniffLen = 261

// ScanHandler serves the synchronous video-scan endpoint. The workflow is
// injected as a cor.Command so tests can substitute a fake pipeline.
type ScanHandler struct {
	workflow cor.Command
}

// NewScanHandler creates the handler for the scan routes.
//
// Inputs:
//   - workflow: The scan pipeline to execute for each request, typically
//     built by workflow.NewVideoScanPipeline.
//
// Outputs:
//   - *ScanHandler: The configured handler, ready to be registered.
func NewScanHandler(workflow cor.Command) *ScanHandler {
	return &ScanHandler{workflow: workflow}
}

// Register adds the scan routes to the given router group.
func (h *ScanHandler) Register(r *gin.RouterGroup) {
	scans := r.Group("/scans")
	{
		scans.POST("", h.Scan)
	}
}

// Scan handles POST /scans.
func (h *ScanHandler) Scan(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing video file"})
		return
	}

	generalLocations, err := parseGeneralLocations(c.PostForm("generalLocations"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workDir, err := media.CreateWorkspace(uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	chainCtx := cor.NewBaseContext(c.Request.Context())
	chainCtx.AddTempDir(workDir)
	defer chainCtx.Close()

	videoPath := filepath.Join(workDir, commands.VideoFileName)
	if err := c.SaveUploadedFile(file, videoPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !isVideoFile(videoPath) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded file is not a video"})
		return
	}

	chainCtx.Add(commands.CtxParamWorkDir, workDir)
	chainCtx.Add(commands.CtxParamVideoPath, videoPath)
	chainCtx.Add(commands.CtxParamGeneralLocations, generalLocations)

	h.workflow.Execute(chainCtx)

	if chainCtx.HasErrors() {
		status, message := statusForErrors(chainCtx.GetErrors())
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, chainCtx.Get(commands.CtxParamScanResult))
}

// parseGeneralLocations decodes the "generalLocations" form field, a JSON
// array of region strings. An absent field, malformed JSON, or an empty
// array are all client errors.
func parseGeneralLocations(raw string) ([]string, error) {
	if raw == "" {
		return nil, errors.New("missing general locations")
	}
	var locations []string
	if err := json.Unmarshal([]byte(raw), &locations); err != nil {
		return nil, errors.New("generalLocations must be a JSON array of strings")
	}
	if len(locations) == 0 {
		return nil, errors.New("at least one general location is required")
	}
	return locations, nil
}

// isVideoFile sniffs the file's leading bytes for a known video container
// signature.
func isVideoFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, sniffLen)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return false
	}
	return filetype.IsVideo(head[:n])
}

// statusForErrors maps the chain's collected errors onto an HTTP status.
// The size-limit failure wins over everything else since it is the only
// condition the client can act on directly.
func statusForErrors(errs map[string]error) (int, string) {
	var tooLarge *commands.TooLargeError
	var transcription *commands.TranscriptionError

	message := "scan failed"
	for _, err := range errs {
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, tooLarge.Error()
		}
		if errors.As(err, &transcription) {
			message = transcription.Error()
			continue
		}
		if message == "scan failed" {
			message = err.Error()
		}
	}
	return http.StatusInternalServerError, message
}
