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
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/jrivets/log4g"
	"github.com/logship/logship/pipeline/utils"
	"github.com/mohae/deepcopy"
)

type (
	// DockerSource runs a container and exposes its combined
	// stdout/stderr stream as a sequence of byte lines.
	DockerSource struct {
		cfg    *Config
		cli    *client.Client
		contID string
		done   chan struct{}
		logger log4g.Logger
	}
)

//===================== dockerSource =====================

func NewDockerSource(cfg *Config) (*DockerSource, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client, err=%v", err)
	}

	ds := new(DockerSource)
	ds.cfg = deepcopy.Copy(cfg).(*Config)
	ds.cli = cli
	ds.logger = log4g.GetLogger("source.docker")
	return ds, nil
}

// StartContainer creates and starts the container which logs will be
// shipped
func (ds *DockerSource) StartContainer(ctx context.Context) error {
	ds.logger.Info("Running container with image=", ds.cfg.Image)

	resp, err := ds.cli.ContainerCreate(ctx, &container.Config{
		Image: ds.cfg.Image,
		Cmd:   []string{"bash", "-c", ds.cfg.Command},
	}, nil, nil, nil, "")
	if err != nil {
		return fmt.Errorf("failed to create container, err=%v", err)
	}
	ds.contID = resp.ID

	if err = ds.cli.ContainerStart(ctx, ds.contID, types.ContainerStartOptions{}); err != nil {
		return fmt.Errorf("failed to start container=%v, err=%v", ds.contID, err)
	}

	ds.logger.Info("Started container=", ds.contID)
	return nil
}

// Run follows the container's multiplexed stdout/stderr stream and feeds
// it line by line into the provided channel. The channel is closed when
// the container stops and the stream is exhausted.
func (ds *DockerSource) Run(ctx context.Context, lines chan<- []byte) error {
	if ds.contID == "" {
		return fmt.Errorf("container is not started")
	}

	rc, err := ds.cli.ContainerLogs(ctx, ds.contID, types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to attach to container=%v logs, err=%v", ds.contID, err)
	}

	// the stream is multiplexed when the container runs without a TTY,
	// demux both substreams into one pipe
	pr, pw := io.Pipe()
	go func() {
		_, err := stdcopy.StdCopy(pw, pw, rc)
		_ = pw.CloseWithError(err)
	}()

	ds.done = make(chan struct{})
	go func() {
		defer close(ds.done)
		defer close(lines)
		defer rc.Close()

		lr := newLineReader(pr, ds.cfg.ReadBufSize)
		for {
			line, err := lr.readLine()
			if len(line) > 0 {
				select {
				case <-ctx.Done():
					return
				case lines <- line:
				}
			}
			if err != nil {
				if err != io.EOF {
					ds.logger.Warn("Log stream terminated, err=", err)
				} else {
					ds.logger.Info("Log stream is over")
				}
				return
			}
		}
	}()
	return nil
}

// Alive reports whether the container is still running
func (ds *DockerSource) Alive(ctx context.Context) (bool, error) {
	if ds.contID == "" {
		return false, nil
	}
	info, err := ds.cli.ContainerInspect(ctx, ds.contID)
	if err != nil {
		return false, err
	}
	return info.State != nil && info.State.Running, nil
}

// Close stops the container if it is still running and force-removes it,
// then releases the docker client
func (ds *DockerSource) Close() error {
	if ds.cli == nil {
		return nil
	}
	defer ds.cli.Close()

	if ds.contID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(ds.cfg.StopTimeoutSec+30)*time.Second)
	defer cancel()

	if alive, err := ds.Alive(ctx); err == nil && alive {
		ds.logger.Info("Stopping container=", ds.contID)
		timeout := ds.cfg.StopTimeoutSec
		if err = ds.cli.ContainerStop(ctx, ds.contID, container.StopOptions{Timeout: &timeout}); err != nil {
			ds.logger.Warn("Failed to stop container=", ds.contID, ", err=", err)
		}
	}

	// force removal so the container doesn't leak even if the stop failed
	err := ds.cli.ContainerRemove(ctx, ds.contID, types.ContainerRemoveOptions{Force: true})
	if err != nil {
		ds.logger.Error("Failed to remove container=", ds.contID, ", err=", err)
		return err
	}

	if ds.done != nil {
		utils.WaitDone(ds.done, 10*time.Second)
	}
	ds.logger.Info("Closed, container=", ds.contID, " removed")
	return nil
}
