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

package source

import (
	"context"
	"fmt"

	"github.com/logship/logship/pipeline/utils"
)

type (
	// Source produces a lazy, unbounded sequence of raw byte lines from
	// the monitored process and exposes a liveness probe for it.
	Source interface {
		// Run starts feeding lines into the provided channel. The
		// channel is closed by the source when the stream ends.
		Run(ctx context.Context, lines chan<- []byte) error

		// Alive reports whether the monitored process is still running
		Alive(ctx context.Context) (bool, error)

		Close() error
	}

	Config struct {
		// Image is the container image to run
		Image string

		// Command is executed in the container, wrapped as `bash -c`
		Command string

		// StopTimeoutSec is how long the container is given to stop
		// before it is killed
		StopTimeoutSec int

		// ReadBufSize is the log stream read buffer size in bytes.
		// Lines longer than the buffer are handed over in pieces.
		ReadBufSize int
	}
)

//===================== config =====================

func NewDefaultConfig() *Config {
	return &Config{
		StopTimeoutSec: 10,
		ReadBufSize:    16384,
	}
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if other.Image != "" {
		c.Image = other.Image
	}
	if other.Command != "" {
		c.Command = other.Command
	}
	if other.StopTimeoutSec > 0 {
		c.StopTimeoutSec = other.StopTimeoutSec
	}
	if other.ReadBufSize > 0 {
		c.ReadBufSize = other.ReadBufSize
	}
}

func (c *Config) Check() error {
	if c.Image == "" {
		return fmt.Errorf("invalid config; Image=%q, must be non-empty", c.Image)
	}
	if c.StopTimeoutSec < 1 {
		return fmt.Errorf("invalid config; StopTimeoutSec=%d, must be >= 1sec", c.StopTimeoutSec)
	}
	if c.ReadBufSize < 1 {
		return fmt.Errorf("invalid config; ReadBufSize=%d, must be >= 1", c.ReadBufSize)
	}
	return nil
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
