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

// Package pipeline ships line-oriented text from a line source to a
// remote, rate-limited, batch-oriented sink without dropping data. It
// accumulates raw bytes, re-chunks them on UTF-8/newline boundaries into
// size-bounded log events, groups the events into batches and delivers
// the batches periodically with bounded retry/backoff. On shutdown every
// stage drains exactly once, so partial data still reaches the sink.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/jrivets/log4g"
	"github.com/logship/logship/pipeline/sink"
	"github.com/logship/logship/pipeline/source"
	"github.com/logship/logship/pipeline/utils"
	"github.com/mohae/deepcopy"
)

type (
	Pipeline struct {
		cfg    *Config
		source source.Source
		sink   sink.Sink
		queue  *batchQueue

		waitWg sync.WaitGroup
		logger log4g.Logger
	}
)

//===================== pipeline =====================

func NewPipeline(cfg *Config, src source.Source, snk sink.Sink) (*Pipeline, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	p := new(Pipeline)
	p.cfg = deepcopy.Copy(cfg).(*Config)
	p.source = src
	p.sink = snk
	p.queue = newBatchQueue()
	p.logger = log4g.GetLogger("pipeline")
	return p, nil
}

// Run executes the pipeline until the line source is drained, the
// context is closed, or a delivery fails fatally. It blocks until both
// the accumulator and the pump have finished their drains and returns
// the first fatal error, if any.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("Running, config=", p.cfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan []byte)
	if err := p.source.Run(ctx, lines); err != nil {
		return err
	}

	var (
		pumpErr error
		accDone = make(chan struct{})
	)

	acc := newAccumulator(p.queue, p.cfg)
	pmp := newPump(p.queue, p.sink, p.cfg)

	p.waitWg.Add(2)
	go func() {
		defer p.waitWg.Done()
		acc.run(ctx, lines)
		close(accDone)
		// the source is drained, let the pump flush and finish
		cancel()
	}()
	go func() {
		defer p.waitWg.Done()
		if err := pmp.run(ctx, accDone); err != nil {
			pumpErr = err
			p.logger.Error("Delivery failed fatally, err=", err)
		}
		// a fatal delivery error aborts the whole pipeline
		cancel()
	}()

	if !utils.WaitWaitGroup(&p.waitWg, 5*time.Minute) {
		p.logger.Warn("Timed out waiting for the drains to finish")
	}
	p.logger.Info("Shutdown, ", p.queue.len(), " undelivered event(s) left, err=", pumpErr)
	return pumpErr
}
