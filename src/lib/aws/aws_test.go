package aws

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	b, _ := io.ReadAll(params.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

type fakePresigner struct {
	expires time.Duration
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := &s3.PresignOptions{}
	for _, fn := range optFns {
		fn(opts)
	}
	f.expires = opts.Expires
	return &v4.PresignedHTTPRequest{URL: "https://assets.example.com/" + aws.ToString(params.Key) + "?sig"}, nil
}

func TestAssetStore_Upload(t *testing.T) {
	client, presign := &fakeS3{}, &fakePresigner{}
	store := NewAssetStoreWithClients(client, presign, "assets", time.Hour)

	url, err := store.Upload(context.Background(), "qr/sale-1.jpeg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://assets.example.com/qr/sale-1.jpeg?sig", url)
	assert.Equal(t, "assets", aws.ToString(client.input.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(client.input.ContentType))
	assert.Equal(t, "jpeg-bytes", client.body)
	assert.Equal(t, time.Hour, presign.expires)
}

func TestAssetStore_UploadFailure(t *testing.T) {
	store := NewAssetStoreWithClients(&fakeS3{err: errors.New("denied")}, &fakePresigner{}, "assets", time.Hour)
	_, err := store.Upload(context.Background(), "k", "image/jpeg", strings.NewReader(""))
	assert.EqualError(t, err, "denied")
}

type fakeSES struct {
	input *ses.SendEmailInput
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSESSendMessage(t *testing.T) {
	client := &fakeSES{}
	id, err := SESSendMessage(context.Background(), client, "noreply@example.com", []string{"buyer@example.com"}, "Hi", "<p>hi</p>")
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)
	assert.Equal(t, []string{"buyer@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>hi</p>", aws.ToString(client.input.Message.Body.Html.Data))
}

type fakeSQS struct {
	urlCalls int
	sent     []string
}

func (f *fakeSQS) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	f.urlCalls++
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String("https://sqs.example.com/" + aws.ToString(params.QueueName))}, nil
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sent = append(f.sent, aws.ToString(params.QueueUrl)+" "+aws.ToString(params.MessageBody))
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestQueueProducer_CachesURL(t *testing.T) {
	client := &fakeSQS{}
	p := NewQueueProducer(client, "TransactionalEmails")

	for range 3 {
		id, err := p.Send(context.Background(), `{"to":"x"}`)
		require.NoError(t, err)
		assert.Equal(t, "m-1", id)
	}
	assert.Equal(t, 1, client.urlCalls)
	assert.Equal(t, `https://sqs.example.com/TransactionalEmails {"to":"x"}`, client.sent[0])
}
