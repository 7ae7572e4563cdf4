// internal/training/trainer/alerts.go
package trainer

import (
	"context"
	"fmt"

	"match-engine/internal/common/aws"
)

// SNSAlerter publishes operator alerts to an SNS topic.
type SNSAlerter struct {
	client *aws.SNSClient
	topic  string
}

func NewSNSAlerter(client *aws.SNSClient, topicARN string) *SNSAlerter {
	return &SNSAlerter{client: client, topic: topicARN}
}

func (a *SNSAlerter) Notify(ctx context.Context, subject, message string) error {
	return a.client.PublishAlert(ctx, a.topic,
		fmt.Sprintf("[match-engine] %s", subject), message)
}
