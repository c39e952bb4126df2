package sns

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// EventPublisher emits domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{})
}

type publishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type message struct {
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

type publisher struct {
	client   publishAPI
	topicARN string
}

// NewClient creates an SNS client, honouring a LocalStack endpoint when set.
func NewClient(awsCfg aws.Config, endpointURL string) *sns.Client {
	clientOpts := []func(*sns.Options){}
	if endpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(endpointURL)
		})
	}
	return sns.NewFromConfig(awsCfg, clientOpts...)
}

// NewPublisher publishes JSON events to topicARN. Delivery is best effort:
// failures are logged and never returned.
func NewPublisher(client publishAPI, topicARN string) EventPublisher {
	return &publisher{client: client, topicARN: topicARN}
}

func (p *publisher) Publish(ctx context.Context, eventType string, payload interface{}) {
	body, err := json.Marshal(message{Type: eventType, Payload: payload, OccurredAt: time.Now().UTC()})
	if err != nil {
		slog.Warn("encode domain event", "type", eventType, "err", err)
		return
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(eventType)},
		},
	})
	if err != nil {
		slog.Warn("publish domain event", "type", eventType, "topic", p.topicARN, "err", err)
	}
}

// Noop discards events; used when no topic is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, interface{}) {}
