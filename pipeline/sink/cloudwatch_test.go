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
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/jrivets/log4g"
	"github.com/logship/logship/api"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeCwAPI struct {
	putInputs []*cloudwatchlogs.PutLogEventsInput
	putErr    error

	groupErr  error
	streamErr error
}

func (f *fakeCwAPI) PutLogEvents(ctx context.Context, in *cloudwatchlogs.PutLogEventsInput,
	optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error) {
	f.putInputs = append(f.putInputs, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &cloudwatchlogs.PutLogEventsOutput{}, nil
}

func (f *fakeCwAPI) CreateLogGroup(ctx context.Context, in *cloudwatchlogs.CreateLogGroupInput,
	optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	if f.groupErr != nil {
		return nil, f.groupErr
	}
	return &cloudwatchlogs.CreateLogGroupOutput{}, nil
}

func (f *fakeCwAPI) CreateLogStream(ctx context.Context, in *cloudwatchlogs.CreateLogStreamInput,
	optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return &cloudwatchlogs.CreateLogStreamOutput{}, nil
}

func testCwSink(f *fakeCwAPI) *cloudWatchSink {
	return &cloudWatchSink{
		cfg: &cwConfig{
			Region:     "us-east-1",
			LogGroup:   "test-group",
			LogStream:  "test-stream",
			TimeoutSec: 5,
		},
		client: f,
		logger: log4g.GetLogger("TestCloudWatchSink"),
	}
}

func TestCloudWatchOnEvent(t *testing.T) {
	f := &fakeCwAPI{}
	cs := testCwSink(f)

	err := cs.OnEvent([]*api.LogEvent{
		{Timestamp: 1, Message: "first"},
		{Timestamp: 2, Message: "second"},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(f.putInputs))

	in := f.putInputs[0]
	assert.Equal(t, "test-group", *in.LogGroupName)
	assert.Equal(t, "test-stream", *in.LogStreamName)
	assert.Equal(t, 2, len(in.LogEvents))
	assert.Equal(t, int64(1), *in.LogEvents[0].Timestamp)
	assert.Equal(t, "first", *in.LogEvents[0].Message)
	assert.Equal(t, "second", *in.LogEvents[1].Message)
}

func TestCloudWatchOnEventSkipsEmptyGroup(t *testing.T) {
	f := &fakeCwAPI{}
	cs := testCwSink(f)

	assert.NoError(t, cs.OnEvent(nil))
	assert.Empty(t, f.putInputs)
}

func TestCloudWatchNotFoundIsClassified(t *testing.T) {
	f := &fakeCwAPI{putErr: &types.ResourceNotFoundException{}}
	cs := testCwSink(f)

	err := cs.OnEvent([]*api.LogEvent{{Timestamp: 1, Message: "m"}})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCloudWatchTransientIsNotClassified(t *testing.T) {
	f := &fakeCwAPI{putErr: &types.ServiceUnavailableException{}}
	cs := testCwSink(f)

	err := cs.OnEvent([]*api.LogEvent{{Timestamp: 1, Message: "m"}})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestCloudWatchEnsureExists(t *testing.T) {
	f := &fakeCwAPI{}
	cs := testCwSink(f)
	assert.NoError(t, cs.EnsureExists(context.Background()))
}

func TestCloudWatchEnsureExistsAlreadyThere(t *testing.T) {
	f := &fakeCwAPI{
		groupErr:  &types.ResourceAlreadyExistsException{},
		streamErr: &types.ResourceAlreadyExistsException{},
	}
	cs := testCwSink(f)
	assert.NoError(t, cs.EnsureExists(context.Background()))
}

func TestCloudWatchEnsureExistsFails(t *testing.T) {
	f := &fakeCwAPI{groupErr: &types.OperationAbortedException{}}
	cs := testCwSink(f)
	assert.Error(t, cs.EnsureExists(context.Background()))
}
