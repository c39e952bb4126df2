package sns

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestPublisher_Publish(t *testing.T) {
	m := &mockSNS{}
	var sent *sns.PublishInput
	m.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*sns.PublishInput) }).
		Return(&sns.PublishOutput{}, nil)

	NewPublisher(m, "arn:aws:sns:us-east-1:000000000000:events").
		Publish(context.Background(), "candidate.created", map[string]string{"id": "c1"})

	require.NotNil(t, sent)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:events", *sent.TopicArn)
	assert.Equal(t, "candidate.created", *sent.MessageAttributes["event_type"].StringValue)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(*sent.Message), &body))
	assert.Equal(t, "candidate.created", body["type"])
	assert.Equal(t, map[string]interface{}{"id": "c1"}, body["payload"])
}

func TestPublisher_FailureIsSwallowed(t *testing.T) {
	m := &mockSNS{}
	m.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	assert.NotPanics(t, func() {
		NewPublisher(m, "arn").Publish(context.Background(), "note.created", nil)
	})
	m.AssertExpectations(t)
}
