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
	"encoding/json"
	"fmt"
	"os"

	"github.com/logship/logship/pipeline/sink"
	"github.com/logship/logship/pipeline/source"
	"github.com/logship/logship/pipeline/utils"
)

// Config struct just aggregates the pipeline settings and the source and
// sink configs in one place
type Config struct {
	// MaxMessageSize is the chunk target size, the maximum size of one
	// log event message in bytes
	MaxMessageSize int `json:"maxMessageSize"`

	// MaxBatchSize limits how many events are pushed to the sink in one
	// delivery call, it also multiplies MaxMessageSize into the
	// accumulation high-water mark
	MaxBatchSize int `json:"maxBatchSize"`

	// SendIntervalSec is the delivery pump's wait period
	SendIntervalSec int `json:"sendIntervalSec"`

	// MaxRetries is the push attempt ceiling per delivery group
	MaxRetries int `json:"maxRetries"`

	Source *source.Config `json:"source"`
	Sink   *sink.Config   `json:"sink"`
}

//===================== config =====================

func NewDefaultConfig() *Config {
	return &Config{
		MaxMessageSize:  262144,
		MaxBatchSize:    1000,
		SendIntervalSec: 5,
		MaxRetries:      5,
		Source:          source.NewDefaultConfig(),
		Sink:            sink.NewDefaultConfig(),
	}
}

func LoadCfgFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	err = json.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if other.MaxMessageSize > 0 {
		c.MaxMessageSize = other.MaxMessageSize
	}
	if other.MaxBatchSize > 0 {
		c.MaxBatchSize = other.MaxBatchSize
	}
	if other.SendIntervalSec > 0 {
		c.SendIntervalSec = other.SendIntervalSec
	}
	if other.MaxRetries > 0 {
		c.MaxRetries = other.MaxRetries
	}
	c.Source.Apply(other.Source)
	c.Sink.Apply(other.Sink)
}

func (c *Config) Check() error {
	if c.MaxMessageSize < 1 {
		return fmt.Errorf("invalid config; MaxMessageSize=%d, must be >= 1", c.MaxMessageSize)
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("invalid config; MaxBatchSize=%d, must be >= 1", c.MaxBatchSize)
	}
	if c.SendIntervalSec < 1 {
		return fmt.Errorf("invalid config; SendIntervalSec=%d, must be >= 1sec", c.SendIntervalSec)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("invalid config; MaxRetries=%d, must be >= 1", c.MaxRetries)
	}
	if c.Source == nil {
		return fmt.Errorf("invalid config; source=%v, must be non-nil", c.Source)
	}
	if c.Sink == nil {
		return fmt.Errorf("invalid config; sink=%v, must be non-nil", c.Sink)
	}
	if err := c.Source.Check(); err != nil {
		return err
	}
	return c.Sink.Check()
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
