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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulatorFlushesResidueOnCancel(t *testing.T) {
	q := newBatchQueue()
	acc := newAccumulator(q, testConfig()) // high-water mark is 1024 bytes

	ctx, cancel := context.WithCancel(context.Background())
	lines := make(chan []byte)

	done := make(chan struct{})
	go func() {
		acc.run(ctx, lines)
		close(done)
	}()

	lines <- []byte("test message 1")
	lines <- []byte("test message 2")
	cancel()
	<-done

	evs := q.removeAll()
	assert.Equal(t, 1, len(evs))
	assert.Equal(t, "test message 1test message 2", evs[0].Message)
}

func TestAccumulatorHandsOffAtHighWaterMark(t *testing.T) {
	cfg := testConfig()
	cfg.MaxMessageSize = 4
	cfg.MaxBatchSize = 2

	q := newBatchQueue()
	acc := newAccumulator(q, cfg)

	lines := make(chan []byte)
	done := make(chan struct{})
	go func() {
		acc.run(context.Background(), lines)
		close(done)
	}()

	lines <- []byte("abcdefgh") // hits the 8 byte mark, handed off inline
	close(lines)
	<-done

	evs := q.removeAll()
	assert.Equal(t, 2, len(evs))
	assert.Equal(t, "abcd", evs[0].Message)
	assert.Equal(t, "efgh", evs[1].Message)
}

func TestAccumulatorNothingToFlush(t *testing.T) {
	q := newBatchQueue()
	acc := newAccumulator(q, testConfig())

	lines := make(chan []byte)
	close(lines)
	acc.run(context.Background(), lines)
	assert.Equal(t, 0, q.len())
}
