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
	"sync"

	"github.com/logship/logship/api"
)

type (
	// batchQueue is an ordered sequence of log events shared by exactly
	// two owners: the batcher appends, the pump removes a contiguous
	// prefix. Entries are never mutated after append, so the removed
	// prefix keeps the original chronological order.
	batchQueue struct {
		lock sync.Mutex
		evs  []*api.LogEvent
	}
)

func newBatchQueue() *batchQueue {
	return &batchQueue{}
}

func (q *batchQueue) append(ev *api.LogEvent) {
	q.lock.Lock()
	q.evs = append(q.evs, ev)
	q.lock.Unlock()
}

// removePrefix removes and returns up to n events from the head of the
// queue. It returns nil if the queue is empty.
func (q *batchQueue) removePrefix(n int) []*api.LogEvent {
	q.lock.Lock()
	defer q.lock.Unlock()

	if len(q.evs) == 0 {
		return nil
	}
	if n > len(q.evs) {
		n = len(q.evs)
	}

	evs := make([]*api.LogEvent, n)
	copy(evs, q.evs[:n])
	q.evs = q.evs[:copy(q.evs, q.evs[n:])]
	return evs
}

// prepend restores a previously removed prefix to the head of the
// queue, keeping the original append order.
func (q *batchQueue) prepend(evs []*api.LogEvent) {
	if len(evs) == 0 {
		return
	}
	q.lock.Lock()
	q.evs = append(evs, q.evs...)
	q.lock.Unlock()
}

// removeAll removes and returns everything in the queue.
func (q *batchQueue) removeAll() []*api.LogEvent {
	q.lock.Lock()
	defer q.lock.Unlock()

	evs := q.evs
	q.evs = nil
	return evs
}

func (q *batchQueue) len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.evs)
}
