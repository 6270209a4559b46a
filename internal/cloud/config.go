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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, and the shared clients for the external services
// the scan pipeline talks to: Google Cloud (Storage, Pub/Sub, BigQuery,
// Vertex AI), the speech-to-text endpoint, and the Maps geocoding API.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings disables content blocking for all harm categories.
// The model only ever sees transcripts of user uploads that have already
// been accepted, so filtered responses would just drop locations.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// BigQueryDataSource holds the dataset and table names for persisted videos.
type BigQueryDataSource struct {
	DatasetName   string `toml:"dataset"`
	VideoTable    string `toml:"video_table"`
	LocationTable string `toml:"location_table"`
}

// PromptTemplates holds the text templates for prompts sent to the LLM.
type PromptTemplates struct {
	MentionPrompt string `toml:"mention"` // The template for extracting place mentions from a transcript.
}

// VertexAiLLMModel is the configuration for one Vertex AI language model.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"`
	RateLimit          int     `toml:"rate_limit"` // Requests per second.
	TimeoutInSeconds   int     `toml:"timeout_in_seconds"`
}

// TopicSubscription configures a single Pub/Sub subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`
	DeadLetterTopic  string `toml:"dead_letter_topic"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Storage configures the GCS buckets used for uploaded videos.
type Storage struct {
	VideoBucket string `toml:"video_bucket"`
}

// Transcription configures the speech-to-text fallback service. The
// endpoint speaks the OpenAI audio-transcriptions protocol, so BaseURL can
// point at api.openai.com or any compatible self-hosted Whisper server.
type Transcription struct {
	BaseURL          string `toml:"base_url"`
	APIKey           string `toml:"api_key"`
	Model            string `toml:"model"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
	MaxRetries       int    `toml:"max_retries"`
}

// Geocoding configures the Google Maps Geocoding API client.
type Geocoding struct {
	APIKey           string `toml:"api_key"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// FFmpegTools holds the paths to the local media binaries.
type FFmpegTools struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
}

// Config is the root container for all application settings, populated by
// LoadConfig from the hierarchical TOML files.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`
		GoogleProjectId           string `toml:"google_project_id"`
		GoogleLocation            string `toml:"location"`
		SignerServiceAccountEmail string `toml:"signer_service_account_email"`
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
	AgentModels        map[string]VertexAiLLMModel  `toml:"agent_models"`
	Transcription      Transcription                `toml:"transcription"`
	Geocoding          Geocoding                    `toml:"geocoding"`
	FFmpeg             FFmpegTools                  `toml:"ffmpeg"`
}

// NewConfig creates a Config with its map fields initialized so the TOML
// decoder can populate them.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
}
