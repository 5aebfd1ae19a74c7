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

package sink

import (
	"context"
	"fmt"

	"github.com/logship/logship/api"
	"github.com/logship/logship/pipeline/utils"
	"github.com/pkg/errors"
)

type (
	// Params are sink-type specific settings, decoded by the concrete
	// sink implementation
	Params map[string]interface{}

	Config struct {
		Type   string
		Params Params
	}

	// Sink receives ordered groups of log events for delivery to the
	// remote destination. A call to OnEvent either delivers the whole
	// group or returns an error, there is no partial delivery from the
	// pipeline's point of view.
	Sink interface {
		OnEvent(evs []*api.LogEvent) error
		Close() error
	}

	// Destination is implemented by sinks whose remote destination must
	// be provisioned before the pipeline starts. EnsureExists is
	// idempotent, calling it for an existing destination is not an error.
	Destination interface {
		EnsureExists(ctx context.Context) error
	}
)

const (
	SnkTypeStdout     = "stdout"
	SnkTypeCloudWatch = "cloudwatch"
)

// ErrNotFound marks the errors caused by the remote destination not
// existing anymore (deleted or never created). Such errors are fatal for
// the pipeline and must not be retried.
var ErrNotFound = errors.New("log destination not found")

func NewSink(cfg *Config) (Sink, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config; %v", err)
	}

	switch cfg.Type {
	case SnkTypeStdout:
		return newStdoutSink(), nil
	case SnkTypeCloudWatch:
		return newCloudWatchSink(cfg.Params)
	}

	return nil, fmt.Errorf("unknown sink type=%v", cfg.Type)
}

//===================== config =====================

func NewDefaultConfig() *Config {
	return &Config{
		Type:   SnkTypeStdout,
		Params: Params{},
	}
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if other.Type != "" {
		c.Type = other.Type
	}
	if len(other.Params) != 0 {
		if c.Params == nil {
			c.Params = Params{}
		}
		for k, v := range other.Params {
			c.Params[k] = v
		}
	}
}

func (c *Config) Check() error {
	if c.Type != SnkTypeStdout && c.Type != SnkTypeCloudWatch {
		return fmt.Errorf("unknown Type=%v", c.Type)
	}
	return nil
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
