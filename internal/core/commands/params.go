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

// Well-known context parameter keys shared by the scan pipeline commands.
// The scan chain is seeded with the work dir, video path, and general
// locations; each later command publishes its result under its own key so
// commands further down the chain (and the result assembler) can read any
// intermediate product, not just the previous command's output.
const (
	CtxParamWorkDir          = "__WORK_DIR__"
	CtxParamVideoPath        = "__VIDEO_PATH__"
	CtxParamGeneralLocations = "__GENERAL_LOCATIONS__"
	CtxParamCaptionFile      = "__CAPTION_FILE__"
	CtxParamCaptionFailure   = "__CAPTION_FAILURE__"
	CtxParamSegments         = "__SEGMENTS__"
	CtxParamTranscript       = "__TRANSCRIPT__"
	CtxParamMentions         = "__MENTIONS__"
	CtxParamGeocoded         = "__GEOCODED__"
	CtxParamScanResult       = "__SCAN_RESULT__"
	CtxParamVideo            = "__VIDEO__"
)
