package aws

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func GetS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(*cfg), nil
}

type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// AssetStore uploads generated assets, such as ticket QR images, and hands
// out time-limited links to them.
type AssetStore struct {
	client  S3API
	presign S3Presigner
	bucket  string
	expires time.Duration
}

func NewAssetStore(client *s3.Client, bucket string, expires time.Duration) *AssetStore {
	return NewAssetStoreWithClients(client, s3.NewPresignClient(client), bucket, expires)
}

func NewAssetStoreWithClients(client S3API, presign S3Presigner, bucket string, expires time.Duration) *AssetStore {
	return &AssetStore{client: client, presign: presign, bucket: bucket, expires: expires}
}

// Upload stores body under key and returns a presigned GET URL for it.
func (a *AssetStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		slog.Error("Could not put object to S3 bucket", "bucket", a.bucket, "key", key, "error", err.Error())
		return "", err
	}
	r, err := a.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = a.expires
	})
	if err != nil {
		slog.Error("Could not generate presigned URL", "key", key, "error", err.Error())
		return "", err
	}
	return r.URL, nil
}
