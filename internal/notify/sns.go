// Package notify delivers operational alerts over SNS.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

// SNSNotifier publishes alerts to per-channel SNS topics.
type SNSNotifier struct {
	client *sns.Client
	topics map[string]string // channel name -> topic ARN
	logger *zap.Logger
}

// NewSNSNotifier creates an SNS notifier from the default AWS credential
// chain.
func NewSNSNotifier(ctx context.Context, region string, topics map[string]string, logger *zap.Logger) (*SNSNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SNSNotifier{
		client: sns.NewFromConfig(cfg),
		topics: topics,
		logger: logger,
	}, nil
}

// Alert publishes one message to the topic behind the named channel.
func (n *SNSNotifier) Alert(ctx context.Context, channel, subject, message string) error {
	topicARN, ok := n.topics[channel]
	if !ok || topicARN == "" {
		return fmt.Errorf("no SNS topic configured for channel %q", channel)
	}

	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish alert to %q: %w", channel, err)
	}

	n.logger.Info("alert published",
		zap.String("channel", channel),
		zap.String("subject", subject))
	return nil
}
