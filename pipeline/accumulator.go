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
	"context"

	"github.com/dustin/go-humanize"
	"github.com/jrivets/log4g"
)

type (
	// accumulator collects raw bytes from the line source into a buffer
	// until the high-water mark is reached, then hands the whole buffer
	// to the batcher and resets it. The buffer has exactly one
	// writer/reader pair, it is never touched concurrently.
	accumulator struct {
		queue      *batchQueue
		maxMsgSize int

		// highWater is sized so that, after chunking, at most
		// MaxBatchSize chunks typically result from one handoff
		highWater int

		logger log4g.Logger
	}
)

func newAccumulator(queue *batchQueue, cfg *Config) *accumulator {
	return &accumulator{
		queue:      queue,
		maxMsgSize: cfg.MaxMessageSize,
		highWater:  cfg.MaxMessageSize * cfg.MaxBatchSize,
		logger:     log4g.GetLogger("pipeline.accumulator"),
	}
}

// run loops until the lines channel is closed (the monitored process has
// stopped) or the context is closed. Any residue left in the buffer is
// flushed through the batcher exactly once before run returns, even
// under cancellation.
func (a *accumulator) run(ctx context.Context, lines <-chan []byte) {
	buf := &bytes.Buffer{}
	defer a.flush(buf)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				a.logger.Info("Line source is drained, flushing the residue")
				return
			}
			buf.Write(line)
			if buf.Len() >= a.highWater {
				a.flush(buf)
			}
		}
	}
}

func (a *accumulator) flush(buf *bytes.Buffer) {
	if buf.Len() == 0 {
		return
	}
	cnt := fillBatch(a.queue, buf.Bytes(), a.maxMsgSize, a.logger)
	a.logger.Debug("Batched ", humanize.Bytes(uint64(buf.Len())), " into ", cnt, " event(s)")
	buf.Reset()
}
