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

package cloud

import "strings"

// MetadataKeyGeneralLocations is the GCS object metadata key carrying the
// uploader's general locations, joined with GeneralLocationsSeparator.
// Region strings contain commas ("Philadelphia, PA, USA"), so a comma
// cannot be the list separator. The value is set at upload time and read
// back when the bucket notification triggers asynchronous ingestion.
const (
	MetadataKeyGeneralLocations = "general_locations"
	GeneralLocationsSeparator   = "|"
)

// GetGCSObjectName returns the context key under which workflow commands
// exchange the GCSObject being processed.
func GetGCSObjectName() string {
	return "__GCS__OBJ__"
}

// GCSPubSubNotification maps the JSON payload of a Google Cloud Storage
// bucket notification delivered over Pub/Sub.
type GCSPubSubNotification struct {
	Kind           string            `json:"kind"`
	ID             string            `json:"id"`
	SelfLink       string            `json:"selfLink"`
	Name           string            `json:"name"`
	Bucket         string            `json:"bucket"`
	Generation     string            `json:"generation"`
	MetaGeneration string            `json:"metageneration"`
	ContentType    string            `json:"contentType"`
	TimeCreated    string            `json:"timeCreated"`
	Updated        string            `json:"updated"`
	StorageClass   string            `json:"storageClass"`
	Size           string            `json:"size"`
	MD5Hash        string            `json:"md5Hash"`
	MediaLink      string            `json:"mediaLink"`
	MetaData       map[string]string `json:"metadata"`
	Crc32c         string            `json:"crc32c"`
	ETag           string            `json:"etag"`
}

// GeneralLocations parses the uploader-supplied general locations out of
// the object metadata. Missing or empty metadata yields an empty slice.
func (n *GCSPubSubNotification) GeneralLocations() []string {
	raw, ok := n.MetaData[MetadataKeyGeneralLocations]
	if !ok {
		return nil
	}
	out := make([]string, 0)
	for _, part := range strings.Split(raw, GeneralLocationsSeparator) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// GCSObject is the lightweight internal representation of a stored video
// passed between workflow commands.
type GCSObject struct {
	Bucket           string
	Name             string
	MIMEType         string
	GeneralLocations []string
}
