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

// Package testutil provides shared fixtures for the test suite: the test
// configuration loaded from the TOML files, a sample GCS finalize
// notification, and a sample caption file.
package testutil

import (
	"log"
	"os"

	"github.com/bfmcgo2/sortie-upload/internal/cloud"
)

// stateManager caches the test configuration so the TOML files are parsed
// once per test run.
type stateManager struct {
	config *cloud.Config
}

var state = &stateManager{}

// SetupOS points the configuration loader at the test TOML files by
// setting the config prefix and runtime environment variables.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration. The first
// call sets up the environment and loads the hierarchical TOML files;
// later calls return the cached struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}

// GetTestScanTriggerMessageText returns a GCS finalize notification payload
// of the shape Pub/Sub delivers when a video lands in the source bucket.
// The general locations ride along as object metadata.
func GetTestScanTriggerMessageText() string {
	return `{
  "kind": "storage#object",
  "id": "sortie_video_uploads/philly-weekend.mp4/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/sortie_video_uploads/o/philly-weekend.mp4",
  "name": "philly-weekend.mp4",
  "bucket": "sortie_video_uploads",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "video/mp4",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "timeStorageClassUpdated": "2024-10-11T03:04:08.672Z",
  "size": "18534037",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "mediaLink": "https://storage.googleapis.com/download/storage/v1/b/sortie_video_uploads/o/philly-weekend.mp4?generation=1728615848664286&alt=media",
  "metadata": { "general_locations": "Philadelphia, PA, USA|New York, NY, USA" },
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`
}

// GetTestCaptionText returns a small SRT document with two well-formed
// cues, the second spanning two text lines.
func GetTestCaptionText() string {
	return `1
00:00:09,000 --> 00:00:13,000
We checked into the Guildhouse Hotel

2
00:01:05,500 --> 00:01:08,250
then grabbed a roast pork sandwich
at John's on Snyder Avenue
`
}
