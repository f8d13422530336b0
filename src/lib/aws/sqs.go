package aws

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func GetSQSClient(ctx context.Context) (*sqs.Client, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return sqs.NewFromConfig(*cfg), nil
}

type SQSAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// QueueProducer publishes messages to one named queue. The queue URL is
// resolved on first use and cached.
type QueueProducer struct {
	client SQSAPI
	queue  string

	mu  sync.Mutex
	url *string
}

func NewQueueProducer(client SQSAPI, queue string) *QueueProducer {
	return &QueueProducer{client: client, queue: queue}
}

func (p *QueueProducer) queueURL(ctx context.Context) (*string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.url != nil {
		return p.url, nil
	}
	out, err := p.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(p.queue)})
	if err != nil {
		return nil, err
	}
	p.url = out.QueueUrl
	return p.url, nil
}

// Send publishes body and returns the SQS message id.
func (p *QueueProducer) Send(ctx context.Context, body string) (string, error) {
	url, err := p.queueURL(ctx)
	if err != nil {
		return "", err
	}
	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    url,
		MessageBody: aws.String(body),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
