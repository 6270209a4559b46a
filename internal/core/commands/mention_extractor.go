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

// This file defines the command that asks a language model which places
// the transcript mentions.
//
// Logic Flow:
//  1. Render the prompt template with the general locations, a well-formed
//     example JSON object (few-shot prompting keeps the output shape
//     reliable), and the flattened transcript.
//  2. Send the prompt to a deterministic (temperature 0) model configured
//     for JSON output.
//  3. Decode the reply, accepting `locations` as well as the legacy
//     `items` and `results` keys from earlier prompt revisions.
//  4. An unparseable reply is NOT an error: a video with zero extractable
//     mentions is a valid result, so the command publishes an empty list
//     and the pipeline continues.
//  5. Mentions whose time interval is inverted or empty are clamped to a
//     one-second window starting at their start time.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/bfmcgo2/sortie-upload/internal/core/cor"
	"github.com/bfmcgo2/sortie-upload/internal/core/model"
)

// TextGenerator is the language-model boundary. The production
// implementation is cloud.QuotaAwareGenerativeAIModel.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// MentionExtractor prompts the model for place mentions in a transcript.
type MentionExtractor struct {
	cor.BaseCommand
	generator TextGenerator
	template  *template.Template
}

// NewMentionExtractor is the constructor for the MentionExtractor command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generator: The model wrapper used to run the prompt.
//   - template: A parsed Go template for the extraction prompt.
//
// Outputs:
//   - *MentionExtractor: A pointer to the newly instantiated command.
func NewMentionExtractor(name string, generator TextGenerator, template *template.Template) *MentionExtractor {
	cmd := &MentionExtractor{
		BaseCommand: *cor.NewBaseCommand(name),
		generator:   generator,
		template:    template,
	}
	cmd.InputParamName = CtxParamTranscript
	return cmd
}

// GenerateParams builds the substitution map for the prompt template.
func (c *MentionExtractor) GenerateParams(context cor.Context) map[string]interface{} {
	params := make(map[string]interface{})

	generalLocations := context.Get(CtxParamGeneralLocations).([]string)
	params["GENERAL_LOCATIONS"] = strings.Join(generalLocations, "; ")

	exampleList, _ := json.Marshal(model.GetExampleMentionList())
	params["EXAMPLE_JSON"] = string(exampleList)

	params["TRANSCRIPT"] = context.Get(c.GetInputParam()).(string)
	return params
}

// Execute renders the prompt, runs the model, and decodes the mentions.
func (c *MentionExtractor) Execute(chainCtx cor.Context) {
	var buffer bytes.Buffer
	if err := c.template.Execute(&buffer, c.GenerateParams(chainCtx)); err != nil {
		c.GetErrorCounter().Add(chainCtx.GetContext(), 1)
		chainCtx.AddError(c.GetName(), fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	reply, err := c.generator.GenerateText(chainCtx.GetContext(), buffer.String())
	if err != nil {
		c.GetErrorCounter().Add(chainCtx.GetContext(), 1)
		chainCtx.AddError(c.GetName(), fmt.Errorf("mention extraction model call failed: %w", err))
		return
	}

	mentions := decodeMentions(reply)
	c.GetSuccessCounter().Add(chainCtx.GetContext(), 1)
	chainCtx.Add(CtxParamMentions, mentions)
}

// decodeMentions parses the model reply into mentions, tolerating the
// legacy response keys and clamping bad time intervals. Returns an empty
// slice for anything unparseable.
func decodeMentions(reply string) []model.CandidateMention {
	var list model.MentionList
	if err := json.Unmarshal([]byte(reply), &list); err != nil {
		slog.Warn("mention extraction reply was not valid JSON, continuing with no mentions", "error", err)
		return []model.CandidateMention{}
	}

	mentions := list.Mentions()
	for i := range mentions {
		if mentions[i].TimeEndSec <= mentions[i].TimeStartSec {
			mentions[i].TimeEndSec = mentions[i].TimeStartSec + 1.0
		}
	}
	if mentions == nil {
		mentions = []model.CandidateMention{}
	}
	return mentions
}
