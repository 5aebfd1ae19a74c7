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
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/jrivets/log4g"
	"github.com/logship/logship/api"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

type (
	cwConfig struct {
		Region          string
		LogGroup        string
		LogStream       string
		AccessKeyID     string
		SecretAccessKey string
		TimeoutSec      int
	}

	// cwAPI is the part of the CloudWatch Logs client the sink uses
	cwAPI interface {
		PutLogEvents(ctx context.Context, in *cloudwatchlogs.PutLogEventsInput,
			optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
		CreateLogGroup(ctx context.Context, in *cloudwatchlogs.CreateLogGroupInput,
			optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
		CreateLogStream(ctx context.Context, in *cloudwatchlogs.CreateLogStreamInput,
			optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	}

	cloudWatchSink struct {
		cfg    *cwConfig
		client cwAPI
		logger log4g.Logger
	}
)

const (
	PrmCwRegion          = "Region"
	PrmCwLogGroup        = "LogGroup"
	PrmCwLogStream       = "LogStream"
	PrmCwAccessKeyID     = "AccessKeyID"
	PrmCwSecretAccessKey = "SecretAccessKey"
	PrmCwTimeoutSec      = "TimeoutSec"
)

const defaultCwTimeoutSec = 30

//===================== cloudWatchSink =====================

func newCloudWatchSink(params Params) (*cloudWatchSink, error) {
	scfg := &cwConfig{TimeoutSec: defaultCwTimeoutSec}
	if err := mapstructure.Decode(params, scfg); err != nil {
		return nil, fmt.Errorf("unable to decode Params=%v; %v", params, err)
	}
	if err := scfg.check(); err != nil {
		return nil, fmt.Errorf("invalid config; %v", err)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(scfg.Region),
	}
	if scfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(scfg.AccessKeyID, scfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config, err=%v", err)
	}

	// the pipeline owns the retry policy, keep the SDK out of it
	client := cloudwatchlogs.NewFromConfig(awsCfg, func(o *cloudwatchlogs.Options) {
		o.RetryMaxAttempts = 0
	})

	return &cloudWatchSink{
		cfg:    scfg,
		client: client,
		logger: log4g.GetLogger("sink.cloudwatch"),
	}, nil
}

// EnsureExists creates the log group and the log stream if they don't
// exist yet
func (cs *cloudWatchSink) EnsureExists(ctx context.Context) error {
	cs.logger.Info("Ensuring that the log group=", cs.cfg.LogGroup,
		" and stream=", cs.cfg.LogStream, " exist")

	_, err := cs.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(cs.cfg.LogGroup),
	})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("failed to create log group=%v, err=%v", cs.cfg.LogGroup, err)
	}

	_, err = cs.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(cs.cfg.LogGroup),
		LogStreamName: aws.String(cs.cfg.LogStream),
	})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("failed to create log stream=%v, err=%v", cs.cfg.LogStream, err)
	}
	return nil
}

func (cs *cloudWatchSink) OnEvent(evs []*api.LogEvent) error {
	if len(evs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cs.cfg.TimeoutSec)*time.Second)
	defer cancel()

	input := &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(cs.cfg.LogGroup),
		LogStreamName: aws.String(cs.cfg.LogStream),
		LogEvents:     toInputLogEvents(evs),
	}

	_, err := cs.client.PutLogEvents(ctx, input)
	if err != nil {
		var rnf *types.ResourceNotFoundException
		if errors.As(err, &rnf) {
			return errors.WithMessage(ErrNotFound, err.Error())
		}
		return err
	}
	return nil
}

func (cs *cloudWatchSink) Close() error {
	return nil
}

func toInputLogEvents(evs []*api.LogEvent) []types.InputLogEvent {
	res := make([]types.InputLogEvent, 0, len(evs))
	for _, e := range evs {
		res = append(res, types.InputLogEvent{
			Timestamp: aws.Int64(e.Timestamp),
			Message:   aws.String(e.Message),
		})
	}
	return res
}

func isAlreadyExists(err error) bool {
	var rae *types.ResourceAlreadyExistsException
	return errors.As(err, &rae)
}

//===================== cwConfig =====================

func (c *cwConfig) check() error {
	if c.Region == "" {
		return fmt.Errorf("must have param '%v'", PrmCwRegion)
	}
	if c.LogGroup == "" {
		return fmt.Errorf("must have param '%v'", PrmCwLogGroup)
	}
	if c.LogStream == "" {
		return fmt.Errorf("must have param '%v'", PrmCwLogStream)
	}
	if c.TimeoutSec < 1 {
		return fmt.Errorf("invalid %v=%d, must be >= 1sec", PrmCwTimeoutSec, c.TimeoutSec)
	}
	return nil
}
