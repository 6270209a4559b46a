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
// defines the stored-video surface: asynchronous uploads into the source
// bucket (picked up later by the Pub/Sub ingestion workflow), persisting a
// finished scan bundle, retrieval by id, user, or public flag, and signed
// streaming URLs.
package api

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bfmcgo2/sortie-upload/internal/cloud"
	"github.com/bfmcgo2/sortie-upload/internal/core/model"
	"github.com/bfmcgo2/sortie-upload/internal/core/services"
)

// streamURLTTL is how long a generated streaming URL stays valid.
const streamURLTTL = 15 * time.Minute

// VideoHandler serves the upload and stored-video routes.
type VideoHandler struct {
	service       *services.VideoService
	storageClient *storage.Client
	videoBucket   string
}

// NewVideoHandler creates the handler for the upload and video routes.
//
// Inputs:
//   - service: The persistence service backing the video endpoints.
//   - storageClient: The GCS client used for direct upload streaming.
//   - videoBucket: The source bucket watched by the ingestion listener.
//
// Outputs:
//   - *VideoHandler: The configured handler, ready to be registered.
func NewVideoHandler(service *services.VideoService, storageClient *storage.Client, videoBucket string) *VideoHandler {
	return &VideoHandler{
		service:       service,
		storageClient: storageClient,
		videoBucket:   videoBucket,
	}
}

// Register adds the upload and video routes to the given router group.
func (h *VideoHandler) Register(r *gin.RouterGroup) {
	uploads := r.Group("/uploads")
	{
		uploads.POST("", h.Upload)
	}
	videos := r.Group("/videos")
	{
		videos.POST("", h.Create)
		videos.GET("", h.List)
		videos.GET("/:id", h.GetByID)
		videos.GET("/:id/stream", h.Stream)
	}
}

// Upload handles POST /uploads. The video lands in the source bucket with
// its general locations attached as object metadata; the Pub/Sub listener
// scans it asynchronously from there.
func (h *VideoHandler) Upload(c *gin.Context) {
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

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer func() { _ = src.Close() }()

	objectName := uuid.NewString() + "/" + file.Filename
	wc := h.storageClient.Bucket(h.videoBucket).Object(objectName).NewWriter(c)
	wc.ContentType = file.Header.Get("Content-Type")
	wc.Metadata = map[string]string{
		cloud.MetadataKeyGeneralLocations: strings.Join(generalLocations, cloud.GeneralLocationsSeparator),
	}

	if _, err := io.Copy(wc, src); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := wc.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"bucket": h.videoBucket, "object": objectName})
}

// Create handles POST /videos: persisting a finished scan bundle.
func (h *VideoHandler) Create(c *gin.Context) {
	var video model.Video
	if err := c.ShouldBindJSON(&video); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	for i, loc := range video.Locations {
		loc.VideoID = video.ID
		loc.Ordinal = i
	}

	if err := h.service.Save(c, &video); err != nil {
		slog.Error("failed to save video", "id", video.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save video"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": video.ID})
}

// GetByID handles GET /videos/:id.
func (h *VideoHandler) GetByID(c *gin.Context) {
	video, err := h.service.Get(c, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	c.JSON(http.StatusOK, video)
}

// List handles GET /videos?user=<id> and GET /videos?public=true.
func (h *VideoHandler) List(c *gin.Context) {
	if userID := c.Query("user"); userID != "" {
		videos, err := h.service.ListByUser(c, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list videos"})
			return
		}
		c.JSON(http.StatusOK, videos)
		return
	}

	if c.Query("public") == "true" {
		videos, err := h.service.ListPublic(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list videos"})
			return
		}
		c.JSON(http.StatusOK, videos)
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "either user or public=true is required"})
}

// Stream handles GET /videos/:id/stream by returning a time-limited signed
// URL for the stored object.
func (h *VideoHandler) Stream(c *gin.Context) {
	video, err := h.service.Get(c, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	signedURL, err := h.service.GenerateSignedURL(c, video.VideoFilename, streamURLTTL)
	if err != nil {
		slog.Error("failed to generate signed url", "id", video.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate streaming URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}
