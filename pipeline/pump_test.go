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
	"sync"
	"testing"
	"time"

	"github.com/logship/logship/api"
	"github.com/logship/logship/pipeline/sink"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type testSink struct {
	lock    sync.Mutex
	calls   [][]*api.LogEvent
	onEvent func(attempt int, evs []*api.LogEvent) error
}

func (ts *testSink) OnEvent(evs []*api.LogEvent) error {
	ts.lock.Lock()
	ts.calls = append(ts.calls, evs)
	attempt := len(ts.calls)
	ts.lock.Unlock()

	if ts.onEvent != nil {
		return ts.onEvent(attempt, evs)
	}
	return nil
}

func (ts *testSink) Close() error {
	return nil
}

func (ts *testSink) callCount() int {
	ts.lock.Lock()
	defer ts.lock.Unlock()
	return len(ts.calls)
}

func testPump(snk sink.Sink, maxBatchSize, maxRetries int) (*pump, *[]time.Duration) {
	slept := make([]time.Duration, 0)
	p := newPump(newBatchQueue(), snk, &Config{
		MaxMessageSize:  1024,
		MaxBatchSize:    maxBatchSize,
		SendIntervalSec: 1,
		MaxRetries:      maxRetries,
	})
	p.sleep = func(ctx context.Context, t time.Duration) bool {
		slept = append(slept, t)
		return true
	}
	return p, &slept
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func TestPumpDrainsInGroups(t *testing.T) {
	snk := &testSink{}
	p, _ := testPump(snk, 2, 3)
	p.queue.append(&api.LogEvent{Message: "a"})
	p.queue.append(&api.LogEvent{Message: "b"})

	err := p.drain(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, snk.callCount())
	assert.Equal(t, 2, len(snk.calls[0]))
	assert.Equal(t, 0, p.queue.len())
}

func TestPumpDrainSplitsBigQueue(t *testing.T) {
	snk := &testSink{}
	p, _ := testPump(snk, 2, 3)
	for i := 0; i < 5; i++ {
		p.queue.append(&api.LogEvent{Message: "m"})
	}

	err := p.drain(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, snk.callCount())
	assert.Equal(t, 2, len(snk.calls[0]))
	assert.Equal(t, 2, len(snk.calls[1]))
	assert.Equal(t, 1, len(snk.calls[2]))
}

func TestPumpFinalFlushOnCancel(t *testing.T) {
	snk := &testSink{}
	p, _ := testPump(snk, 2, 3)
	for i := 0; i < 3; i++ {
		p.queue.append(&api.LogEvent{Message: "m"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.run(ctx, closedChan())
	assert.NoError(t, err)
	assert.Equal(t, 1, snk.callCount())
	assert.Equal(t, 3, len(snk.calls[0]))
	assert.Equal(t, 0, p.queue.len())
}

// A shutdown arriving while a transient failure is waiting out its
// backoff must not lose the in-flight group: run exits cleanly and the
// final flush covers the whole queue in one push.
func TestPumpCancelDuringBackoffKeepsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	transient := errors.New("connection reset")
	snk := &testSink{
		onEvent: func(attempt int, evs []*api.LogEvent) error {
			if attempt == 1 {
				cancel()
				return transient
			}
			return nil
		},
	}
	p, _ := testPump(snk, 2, 3)
	p.sleep = func(ctx context.Context, t time.Duration) bool {
		return ctx.Err() == nil
	}
	for i := 0; i < 3; i++ {
		p.queue.append(&api.LogEvent{Message: "m"})
	}

	err := p.run(ctx, closedChan())
	assert.NoError(t, err)
	assert.Equal(t, 2, snk.callCount())
	assert.Equal(t, 3, len(snk.calls[1]))
	assert.Equal(t, 0, p.queue.len())
}

func TestPumpNoFinalFlushWhenEmpty(t *testing.T) {
	snk := &testSink{}
	p, _ := testPump(snk, 2, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.run(ctx, closedChan())
	assert.NoError(t, err)
	assert.Equal(t, 0, snk.callCount())
}

func TestPushRetrySucceeds(t *testing.T) {
	transient := errors.New("connection reset")
	snk := &testSink{
		onEvent: func(attempt int, evs []*api.LogEvent) error {
			if attempt < 3 {
				return transient
			}
			return nil
		},
	}
	p, slept := testPump(snk, 2, 3)

	err := p.pushWithRetry(context.Background(), []*api.LogEvent{{Message: "m"}})
	assert.NoError(t, err)
	assert.Equal(t, 3, snk.callCount())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *slept)
}

func TestPushRetryExhausted(t *testing.T) {
	transient := errors.New("connection reset")
	snk := &testSink{
		onEvent: func(attempt int, evs []*api.LogEvent) error {
			return transient
		},
	}
	p, slept := testPump(snk, 2, 3)

	err := p.pushWithRetry(context.Background(), []*api.LogEvent{{Message: "m"}})
	assert.Equal(t, transient, err)
	assert.Equal(t, 3, snk.callCount())
	// no sleep after the last attempt
	assert.Equal(t, 2, len(*slept))
}

func TestPushNotFoundIsFatal(t *testing.T) {
	snk := &testSink{
		onEvent: func(attempt int, evs []*api.LogEvent) error {
			return errors.WithMessage(sink.ErrNotFound, "group is gone")
		},
	}
	p, slept := testPump(snk, 2, 3)

	err := p.pushWithRetry(context.Background(), []*api.LogEvent{{Message: "m"}})
	assert.True(t, errors.Is(err, sink.ErrNotFound))
	assert.Equal(t, 1, snk.callCount())
	assert.Empty(t, *slept)
}

func TestBackoffDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoffDelay(1))
	assert.Equal(t, 4*time.Second, backoffDelay(2))
	assert.Equal(t, 8*time.Second, backoffDelay(3))
}
