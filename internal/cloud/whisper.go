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

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bfmcgo2/sortie-upload/internal/core/model"
)

// WhisperClient calls an OpenAI-compatible audio transcription endpoint
// and maps the verbose JSON response to transcript segments.
//
// Server errors and network failures are retried with exponential backoff;
// 4xx responses are not, since resubmitting the same audio cannot fix a
// rejected request.
type WhisperClient struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries uint64
	httpClient *http.Client
}

// whisperVerboseResponse is the subset of the verbose_json transcription
// response the pipeline consumes.
type whisperVerboseResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// whisperHTTPError marks a response that should not be retried.
type whisperHTTPError struct {
	StatusCode int
	Body       string
}

func (e *whisperHTTPError) Error() string {
	return fmt.Sprintf("transcription service returned %d: %s", e.StatusCode, e.Body)
}

// NewWhisperClient creates a client for the configured transcription
// service. A zero timeout defaults to 120 seconds, a zero retry count to 3.
func NewWhisperClient(cfg *Transcription) *WhisperClient {
	timeout := time.Duration(cfg.TimeoutInSeconds) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	maxRetries := uint64(cfg.MaxRetries)
	if maxRetries == 0 {
		maxRetries = 3
	}
	return &WhisperClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Transcribe submits the audio file and returns its timestamped segments.
func (w *WhisperClient) Transcribe(ctx context.Context, audioPath string) ([]model.TranscriptSegment, error) {
	var result *whisperVerboseResponse

	operation := func() error {
		resp, err := w.submit(ctx, audioPath)
		if err != nil {
			var httpErr *whisperHTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		result = resp
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), w.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	segments := make([]model.TranscriptSegment, 0, len(result.Segments))
	for _, s := range result.Segments {
		segments = append(segments, model.TranscriptSegment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return segments, nil
}

// submit performs one multipart upload to the transcription endpoint.
func (w *WhisperClient) submit(ctx context.Context, audioPath string) (*whisperVerboseResponse, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to open audio file: %w", err))
	}
	defer func() { _ = file.Close() }()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		var writeErr error
		defer func() { _ = pw.CloseWithError(writeErr) }()

		part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
		if err != nil {
			writeErr = err
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			writeErr = err
			return
		}
		if err := writer.WriteField("model", w.model); err != nil {
			writeErr = err
			return
		}
		if err := writer.WriteField("response_format", "verbose_json"); err != nil {
			writeErr = err
			return
		}
		if err := writer.WriteField("timestamp_granularities[]", "segment"); err != nil {
			writeErr = err
			return
		}
		writeErr = writer.Close()
	}()

	url := fmt.Sprintf("%s/audio/transcriptions", w.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &whisperHTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded whisperVerboseResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode transcription response: %w", err))
	}
	return &decoded, nil
}
