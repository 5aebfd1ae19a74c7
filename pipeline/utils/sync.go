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

package utils

import (
	"context"
	"sync"
	"time"
)

// Wait blocks until the next ticker signal or the context is closed.
// It returns false if the context was closed.
func Wait(ctx context.Context, ticker *time.Ticker) bool {
	select {
	case <-ctx.Done():
		return false
	case <-ticker.C:
		return true
	}
}

// Sleep blocks for the duration t or until the context is closed,
// whatever happens first. It returns false if the context was closed.
func Sleep(ctx context.Context, t time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(t):
		return true
	}
}

func WaitDone(done chan struct{}, t time.Duration) bool {
	select {
	case <-done:
		return true
	case <-time.After(t):
		return false
	}
}

func WaitWaitGroup(wg *sync.WaitGroup, t time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return WaitDone(done, t)
}
