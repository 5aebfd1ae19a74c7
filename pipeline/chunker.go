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

package pipeline

import (
	"bytes"

	"github.com/jrivets/log4g"
)

type (
	// chunkIter splits a byte string into sub-slices of at most maxSize
	// bytes each, preferring to cut at newline boundaries and never
	// cutting inside a multi-byte UTF-8 sequence. Concatenating all
	// yielded chunks in order reproduces the input exactly.
	//
	// The iterator is lazy, finite and non-restartable; the yielded
	// chunks alias the input buffer, so the buffer must not be modified
	// until the consumer is done with them.
	chunkIter struct {
		buf     []byte
		maxSize int
		start   int
		logger  log4g.Logger
	}
)

func newChunkIter(buf []byte, maxSize int, logger log4g.Logger) *chunkIter {
	return &chunkIter{buf: buf, maxSize: maxSize, logger: logger}
}

// next returns the next chunk, or (nil, false) when the input is
// exhausted. Every yielded chunk is non-empty, the cursor advances on
// each call.
func (ci *chunkIter) next() ([]byte, bool) {
	if ci.start >= len(ci.buf) {
		return nil, false
	}

	end := ci.start + ci.maxSize
	if end >= len(ci.buf) {
		chunk := ci.buf[ci.start:]
		ci.start = len(ci.buf)
		return chunk, true
	}

	// prefer a newline as a natural breaking point; a newline at the
	// cursor itself is ignored, otherwise the cursor would never advance
	if p := bytes.LastIndexByte(ci.buf[ci.start:end], '\n'); p > 0 {
		p += ci.start
		chunk := ci.buf[ci.start:p]
		ci.start = p
		return chunk, true
	}

	// back off while the cut would land in the middle of a multi-byte
	// UTF-8 sequence (continuation bytes have the top two bits set to 10)
	for end > ci.start && ci.buf[end]&0xC0 == 0x80 {
		end--
	}

	if end == ci.start {
		// the whole window is one unsplittable multi-byte run, cut it
		// anyway rather than looping forever
		end = ci.start + ci.maxSize
		ci.logger.Warn("Failed to split on a UTF-8 boundary, forcing a cut; chunk=", ci.buf[ci.start:end])
	}

	chunk := ci.buf[ci.start:end]
	ci.start = end
	return chunk, true
}
