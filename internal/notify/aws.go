package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSAPI interface {
	Publish(ctx context.Context, in *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

type SESAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSPush publishes push payloads to a topic. Subscribers filter on the
// user_id message attribute.
type SNSPush struct {
	Client   SNSAPI
	TopicARN string
}

func (p SNSPush) SendPush(ctx context.Context, userID string, msg Message) error {
	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]string{"title": msg.Title, "body": msg.Body},
		"data":         map[string]string{"type": string(msg.Type)},
	})
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}
	// Platform payloads are embedded as JSON strings.
	raw, err := json.Marshal(map[string]string{"default": msg.Body, "GCM": string(gcm)})
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	_, err = p.Client.Publish(ctx, &awssns.PublishInput{
		TopicArn:         aws.String(p.TopicARN),
		MessageStructure: aws.String("json"),
		Message:          aws.String(string(raw)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"user_id":           {DataType: aws.String("String"), StringValue: aws.String(userID)},
			"notification_type": {DataType: aws.String("String"), StringValue: aws.String(string(msg.Type))},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

type SESMail struct {
	Client SESAPI
	From   string
}

func (m SESMail) SendEmail(ctx context.Context, to, subject, html string) error {
	_, err := m.Client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{ToAddresses: []string{to}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Html: &sestypes.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(m.From),
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}

// NewAWSSenders loads the default AWS credential chain for region. A sender
// whose target (topic or from address) is empty is returned as nil.
func NewAWSSenders(ctx context.Context, region, topicARN, from string) (PushSender, EmailSender, error) {
	if topicARN == "" && from == "" {
		return nil, nil, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, nil, fmt.Errorf("load aws config: %w", err)
	}
	var (
		push  PushSender
		email EmailSender
	)
	if topicARN != "" {
		push = SNSPush{Client: awssns.NewFromConfig(cfg), TopicARN: topicARN}
	}
	if from != "" {
		email = SESMail{Client: ses.NewFromConfig(cfg), From: from}
	}
	return push, email, nil
}
