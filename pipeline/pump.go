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
	"time"

	"github.com/jrivets/log4g"
	"github.com/logship/logship/api"
	"github.com/logship/logship/pipeline/sink"
	"github.com/logship/logship/pipeline/utils"
	"github.com/pkg/errors"
)

type (
	// pump periodically drains the batch queue in groups of up to
	// maxBatchSize events and pushes every group to the sink, retrying
	// transient failures with exponential backoff. On cancellation it
	// waits for the accumulator's drain and issues one final best-effort
	// push covering whatever remains in the queue.
	pump struct {
		queue        *batchQueue
		sink         sink.Sink
		maxBatchSize int
		interval     time.Duration
		maxRetries   int

		// sleep is utils.Sleep, injectable so retry tests don't wait
		sleep func(ctx context.Context, t time.Duration) bool

		logger log4g.Logger
	}
)

// errInterrupted signals that a retry backoff was cut short by the
// context. It never leaves the pump, drain turns it into a clean stop
// so the final flush still covers the interrupted group.
var errInterrupted = errors.New("interrupted")

func newPump(queue *batchQueue, snk sink.Sink, cfg *Config) *pump {
	return &pump{
		queue:        queue,
		sink:         snk,
		maxBatchSize: cfg.MaxBatchSize,
		interval:     time.Duration(cfg.SendIntervalSec) * time.Second,
		maxRetries:   cfg.MaxRetries,
		sleep:        utils.Sleep,
		logger:       log4g.GetLogger("pipeline.pump"),
	}
}

// run loops until the context is closed or a push fails fatally. The
// accDone channel signals that the accumulator has flushed its residue
// into the queue, the final push must not happen before that.
func (p *pump) run(ctx context.Context, accDone chan struct{}) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for utils.Wait(ctx, ticker) {
		if err := p.drain(ctx); err != nil {
			return err
		}
	}

	if !utils.WaitDone(accDone, time.Minute) {
		p.logger.Warn("Timed out waiting for the accumulator drain, flushing what we have")
	}

	if evs := p.queue.removeAll(); len(evs) > 0 {
		p.logger.Info("Final flush of ", len(evs), " event(s)")
		if err := p.sink.OnEvent(evs); err != nil {
			p.logger.Error("Failed to flush ", len(evs), " event(s) on shutdown, err=", err)
		}
	}
	return nil
}

// drain pushes groups until the queue is empty. When a backoff is cut
// short by cancellation the in-flight group goes back to the head of
// the queue and drain stops without an error, the final flush in run
// picks the group up together with whatever else remains.
func (p *pump) drain(ctx context.Context) error {
	for {
		evs := p.queue.removePrefix(p.maxBatchSize)
		if len(evs) == 0 {
			return nil
		}
		if err := p.pushWithRetry(ctx, evs); err != nil {
			if errors.Is(err, errInterrupted) {
				p.logger.Debug("Push of ", len(evs), " event(s) interrupted by shutdown, re-queueing")
				p.queue.prepend(evs)
				return nil
			}
			return err
		}
	}
}

// pushWithRetry attempts to deliver one group of events. Transient
// failures are retried up to maxRetries attempts total, not-found
// failures and the last transient one are propagated. Cancellation
// during a backoff returns errInterrupted instead of the transient
// error, shutdown is not a delivery failure.
func (p *pump) pushWithRetry(ctx context.Context, evs []*api.LogEvent) error {
	var err error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		if err = p.sink.OnEvent(evs); err == nil {
			return nil
		}
		if errors.Is(err, sink.ErrNotFound) {
			return err
		}
		if attempt == p.maxRetries {
			break
		}

		delay := backoffDelay(attempt)
		p.logger.Warn("Push attempt ", attempt, " of ", p.maxRetries,
			" failed, retrying in ", delay, ", err=", err)
		if !p.sleep(ctx, delay) {
			return errInterrupted
		}
	}
	return err
}

// backoffDelay is a pure function of the attempt count, attempt is
// counted from 1
func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}
