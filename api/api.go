// Copyright 2026 The logship Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api contains the data-type definitions shared between the
// pipeline and the sinks it delivers to.
package api

type (
	// LogEvent struct describes one timestamped unit of text destined for
	// the remote sink. An instance is created by the pipeline's batcher
	// at the moment a chunk is finalized and is never mutated afterwards.
	LogEvent struct {
		// Timestamp contains the time the event was batched, in
		// milliseconds since epoch. It reflects batching time, not the
		// original emission time, so consumers must tolerate a small
		// ingestion lag.
		Timestamp int64

		// Message contains the event text. It is never empty and, except
		// for the documented forced-cut fallback in the chunker, always
		// holds valid UTF-8.
		Message string
	}
)
