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
	"encoding/json"
	"fmt"

	"github.com/bfmcgo2/sortie-upload/internal/cloud"
	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
)

// ScanTriggerToGCSObject is the entry command of the asynchronous
// ingestion workflow. It parses the GCS bucket notification that arrives
// over Pub/Sub into the simplified GCSObject downstream commands consume,
// carrying along the uploader's general locations from object metadata.
type ScanTriggerToGCSObject struct {
	cor.BaseCommand
}

func NewScanTriggerToGCSObject(name string) *ScanTriggerToGCSObject {
	return &ScanTriggerToGCSObject{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the raw notification JSON from the context input.
func (c *ScanTriggerToGCSObject) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)

	var notification cloud.GCSPubSubNotification
	if err := json.Unmarshal([]byte(in), &notification); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	msg := &cloud.GCSObject{
		Bucket:           notification.Bucket,
		Name:             notification.Name,
		MIMEType:         notification.ContentType,
		GeneralLocations: notification.GeneralLocations(),
	}
	context.Add(cloud.GetGCSObjectName(), msg)
	context.Add(c.GetOutputParam(), msg)
}
