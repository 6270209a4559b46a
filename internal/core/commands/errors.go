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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface for the video scan
// pipeline: workspace setup, caption extraction, transcription fallback,
// mention extraction, geocoding, and persistence.
//
// This file defines the typed terminal errors commands record on the
// workflow context. The API layer maps them to HTTP status codes.
package commands

import "fmt"

// TooLargeError is recorded when a video exceeds the transcription size
// ceiling and the audio compression pass fails, leaving nothing small
// enough to submit. Maps to HTTP 413.
type TooLargeError struct {
	SizeBytes int64
	Cause     error
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("video of %d bytes exceeds the transcription limit and compression failed: %v", e.SizeBytes, e.Cause)
}

func (e *TooLargeError) Unwrap() error { return e.Cause }

// TranscriptionError is recorded when the speech-to-text service fails
// after its own retries. Maps to HTTP 500.
type TranscriptionError struct {
	Cause error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Cause)
}

func (e *TranscriptionError) Unwrap() error { return e.Cause }
