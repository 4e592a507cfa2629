package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/glam-looks-api/internal/domain"
)

// EventLookCreated is the event_type attribute of look-created notifications.
const EventLookCreated = "look.created"

// API is the subset of the SNS client the publisher uses.
type API interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type lookCreated struct {
	Event      string `json:"event"`
	UserID     string `json:"user_id"`
	UploadID   string `json:"upload_id"`
	LookName   string `json:"look_name"`
	ARPresetID string `json:"ar_preset_id"`
	CreatedAt  string `json:"created_at"`
}

// Publisher announces saved looks on an SNS topic.
type Publisher struct {
	client   API
	topicARN string
}

// NewClient creates an SNS client, pointed at endpointURL when set.
func NewClient(awsCfg aws.Config, endpointURL string) *sns.Client {
	clientOpts := []func(*sns.Options){}
	if endpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(endpointURL)
		})
	}
	return sns.NewFromConfig(awsCfg, clientOpts...)
}

func NewPublisher(client API, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

// LookCreated publishes a summary of l. Subscribers can filter on the
// event_type and user_id message attributes.
func (p *Publisher) LookCreated(ctx context.Context, l *domain.LookRecommendation) error {
	body, err := json.Marshal(lookCreated{
		Event:      EventLookCreated,
		UserID:     l.UserID,
		UploadID:   l.UploadID,
		LookName:   l.LookName,
		ARPresetID: l.ARPresetID,
		CreatedAt:  l.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(EventLookCreated)},
			"user_id":    {DataType: aws.String("String"), StringValue: aws.String(l.UserID)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", EventLookCreated, err)
	}
	return nil
}
