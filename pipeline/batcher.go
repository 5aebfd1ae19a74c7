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
	"time"

	"github.com/jrivets/log4g"
	"github.com/logship/logship/api"
)

// fillBatch runs the accumulated raw bytes through the chunker and
// appends one LogEvent per non-empty chunk to the queue. It is the sole
// writer of the event timestamps, which therefore reflect batching time,
// not original emission time. Returns the number of appended events.
func fillBatch(queue *batchQueue, buf []byte, maxMsgSize int, logger log4g.Logger) int {
	cnt := 0
	ci := newChunkIter(buf, maxMsgSize, logger)
	for {
		chunk, ok := ci.next()
		if !ok {
			break
		}

		msg := string(chunk)
		if msg == "" {
			continue
		}

		queue.append(&api.LogEvent{
			Timestamp: time.Now().UnixMilli(),
			Message:   msg,
		})
		cnt++
	}
	return cnt
}
