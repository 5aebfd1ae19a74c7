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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/jrivets/log4g"
	"github.com/logship/logship/pipeline"
	"github.com/logship/logship/pipeline/sink"
	"github.com/logship/logship/pipeline/source"
	"gopkg.in/urfave/cli.v2"
)

const (
	Version = "0.1.0"
)

const (
	argCfgFile    = "config-file"
	argLogCfgFile = "log-config-file"
	argLockFile   = "lock-file"

	argDockerImage = "docker-image"
	argBashCommand = "bash-command"

	argCwGroup    = "aws-cloudwatch-group"
	argCwStream   = "aws-cloudwatch-stream"
	argAwsRegion  = "aws-region"
	argAwsKeyID   = "aws-access-key-id"
	argAwsKeySecr = "aws-secret-access-key"
)

func main() {
	defer log4g.Shutdown()
	app := &cli.App{
		Name:    "logship",
		Version: Version,
		Usage:   "Container Log Shipper",
		Commands: []*cli.Command{
			{
				Name:   "ship",
				Usage:  "Run a container and ship its logs to the remote sink",
				Action: runShip,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  argLogCfgFile,
						Usage: "log4g configuration file path",
					},
					&cli.StringFlag{
						Name:  argCfgFile,
						Usage: "logship configuration file path",
					},
					&cli.StringFlag{
						Name:  argLockFile,
						Usage: "lock file path, protects the log stream from concurrent writers",
					},
					&cli.StringFlag{
						Name:  argDockerImage,
						Usage: "docker image name",
					},
					&cli.StringFlag{
						Name:  argBashCommand,
						Usage: "bash command to run in the container",
					},
					&cli.StringFlag{
						Name:  argCwGroup,
						Usage: "AWS CloudWatch log group name",
					},
					&cli.StringFlag{
						Name:  argCwStream,
						Usage: "AWS CloudWatch log stream name",
					},
					&cli.StringFlag{
						Name:  argAwsRegion,
						Usage: "AWS region",
					},
					&cli.StringFlag{
						Name:  argAwsKeyID,
						Usage: "AWS access key ID",
					},
					&cli.StringFlag{
						Name:  argAwsKeySecr,
						Usage: "AWS secret access key",
					},
				},
			},
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.FlagsByName(app.Commands[0].Flags))
	sort.Sort(cli.CommandsByName(app.Commands))
	if err := app.Run(os.Args); err != nil {
		getLogger().Fatal("Failed to run logship, cause: ", err)
	}
}

func runShip(c *cli.Context) error {
	logCfgFile := c.String(argLogCfgFile)
	if logCfgFile != "" {
		err := log4g.ConfigF(logCfgFile)
		if err != nil {
			return err
		}
	}

	logger := getLogger()
	cfg := pipeline.NewDefaultConfig()

	cfgFile := c.String(argCfgFile)
	if cfgFile != "" {
		logger.Info("Loading logship config from=", cfgFile)
		config, err := pipeline.LoadCfgFromFile(cfgFile)
		if err != nil {
			return err
		}
		cfg.Apply(config)
	}

	applyArgsToCfg(c, cfg)

	if lockFile := c.String(argLockFile); lockFile != "" {
		fl := flock.New(lockFile)
		ok, err := fl.TryLock()
		if err != nil {
			return fmt.Errorf("failed to acquire lock-file=%v, err=%v", lockFile, err)
		}
		if !ok {
			return fmt.Errorf("lock-file=%v is held by another logship instance", lockFile)
		}
		defer fl.Unlock()
	}

	ctx := ctxWithSignalHandler()

	snk, err := sink.NewSink(cfg.Sink)
	if err != nil {
		return fmt.Errorf("failed to create sink, err=%v", err)
	}
	defer snk.Close()

	// one-time idempotent provisioning, the pipeline itself assumes the
	// destination already exists
	if d, ok := snk.(sink.Destination); ok {
		if err = d.EnsureExists(ctx); err != nil {
			return err
		}
	}

	src, err := source.NewDockerSource(cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to create source, err=%v", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Error("Failed to clean up the container, err=", err)
		}
	}()

	if err = src.StartContainer(ctx); err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg, src, snk)
	if err != nil {
		return err
	}
	return p.Run(ctx)
}

func applyArgsToCfg(c *cli.Context, cfg *pipeline.Config) {
	if v := c.String(argDockerImage); v != "" {
		cfg.Source.Image = v
	}
	if v := c.String(argBashCommand); v != "" {
		cfg.Source.Command = v
	}

	cwArgs := map[string]string{
		argCwGroup:    sink.PrmCwLogGroup,
		argCwStream:   sink.PrmCwLogStream,
		argAwsRegion:  sink.PrmCwRegion,
		argAwsKeyID:   sink.PrmCwAccessKeyID,
		argAwsKeySecr: sink.PrmCwSecretAccessKey,
	}
	for arg, prm := range cwArgs {
		if v := c.String(arg); v != "" {
			cfg.Sink.Type = sink.SnkTypeCloudWatch
			if cfg.Sink.Params == nil {
				cfg.Sink.Params = sink.Params{}
			}
			cfg.Sink.Params[prm] = v
		}
	}
}

func ctxWithSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		s := <-sigChan
		getLogger().Warn("Handling signal=", s)
		cancel()
	}()
	return ctx
}

func getLogger() log4g.Logger {
	return log4g.GetLogger("logship")
}
