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

// Package workflow defines the high-level orchestrations that combine
// commands into pipelines. This file implements the core video scan: a
// local video plus general locations in, a ScanResult out.
package workflow

import (
	"text/template"
	"time"

	"github.com/bfmcgo2/sortie-upload/internal/cloud"
	"github.com/bfmcgo2/sortie-upload/internal/core/commands"
	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/media"
)

// AgentModelMentionExtractor is the config key of the model used for
// mention extraction.
const AgentModelMentionExtractor = "mention-extractor"

// VideoScanWorkflow turns a video file into an ordered list of geocoded,
// time-bounded locations. The chain branches twice: the subtitle parser
// only runs when caption extraction produced a file, and the
// transcription fallback only runs when no segments exist yet.
//
// The caller seeds the context with the workspace directory, the local
// video path, and the general locations before executing, either directly
// (the synchronous scan endpoint) or through GCSToWorkspace (the
// asynchronous ingestion workflow).
type VideoScanWorkflow struct {
	cor.BaseCommand
	toolchain       *media.Toolchain
	transcriber     commands.Transcriber
	generator       commands.TextGenerator
	geocoder        commands.Geocoder
	geocodeTimeout  time.Duration
	mentionTemplate *template.Template
	chain           cor.Chain
}

// Execute runs the scan chain over the shared context.
func (w *VideoScanWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// IsExecutable requires the seeded video path.
func (w *VideoScanWorkflow) IsExecutable(context cor.Context) bool {
	return context.GetContext() != nil && context.Get(commands.CtxParamVideoPath) != nil
}

func (w *VideoScanWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Probe for embedded captions and extract the first usable track.
	out.AddCommand(commands.NewCaptionExtractor("caption-extractor", w.toolchain))

	// Parse captions into segments when extraction produced a file.
	out.AddCommand(commands.NewSubtitleParser("subtitle-parser"))

	// Speech-to-text when captions yielded nothing, compressing the
	// audio first if the file is over the service limit.
	out.AddCommand(commands.NewTranscriptionFallback("transcription-fallback", w.toolchain, w.transcriber))

	// Flatten segments into the bracket-arrow transcript.
	out.AddCommand(commands.NewTranscriptBuilder("transcript-builder"))

	// Ask the model which places the transcript mentions.
	out.AddCommand(commands.NewMentionExtractor("mention-extractor", w.generator, w.mentionTemplate))

	// Resolve each mention to coordinates within the region bounds.
	out.AddCommand(commands.NewGeocodeMentions("geocode-mentions", w.geocoder, w.geocodeTimeout))

	// Assemble the response payload.
	out.AddCommand(commands.NewScanResultAssembler("scan-result-assembler"))

	w.chain = out
}

// NewVideoScanWorkflow builds the scan pipeline from explicit parts. Used
// directly by tests; production code goes through NewVideoScanPipeline.
func NewVideoScanWorkflow(
	toolchain *media.Toolchain,
	transcriber commands.Transcriber,
	generator commands.TextGenerator,
	geocoder commands.Geocoder,
	geocodeTimeout time.Duration,
	mentionTemplate *template.Template,
) *VideoScanWorkflow {
	w := &VideoScanWorkflow{
		BaseCommand:     *cor.NewBaseCommand("video-scan-pipeline"),
		toolchain:       toolchain,
		transcriber:     transcriber,
		generator:       generator,
		geocoder:        geocoder,
		geocodeTimeout:  geocodeTimeout,
		mentionTemplate: mentionTemplate,
	}
	w.initializeChain()
	return w
}

// NewVideoScanPipeline wires the scan workflow to the configured service
// clients.
func NewVideoScanPipeline(config *cloud.Config, serviceClients *cloud.ServiceClients) *VideoScanWorkflow {
	mentionTemplate, err := template.New("mention-template").Parse(config.PromptTemplates.MentionPrompt)
	if err != nil {
		panic(err) // The app cannot run without a valid extraction prompt.
	}

	return NewVideoScanWorkflow(
		media.NewToolchain(config.FFmpeg.FFmpegPath, config.FFmpeg.FFprobePath),
		serviceClients.WhisperClient,
		serviceClients.AgentModels[AgentModelMentionExtractor],
		serviceClients.MapsClient,
		time.Duration(config.Geocoding.TimeoutInSeconds)*time.Second,
		mentionTemplate,
	)
}
