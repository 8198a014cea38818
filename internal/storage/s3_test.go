package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *S3Service {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String("http://localhost:9000"),
		UsePathStyle: true,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKIDTEST", SecretAccessKey: "secret"}, nil
		}),
	})
	return NewS3Service(client)
}

func TestS3Service_GetObjectURL(t *testing.T) {
	svc := newTestService()

	url, err := svc.GetObjectURL(context.Background(), "clinic", "patients/1/report.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/clinic/patients/1/report.pdf?"), url)
	assert.Contains(t, url, "X-Amz-Expires=900")
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestS3Service_RequiresBucket(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.PutObject(ctx, strings.NewReader("x"), PutOptions{Key: "k"})
	assert.Error(t, err)

	_, err = svc.PutObject(ctx, strings.NewReader("x"), PutOptions{Bucket: "clinic"})
	assert.Error(t, err)

	_, err = svc.ListObjects(ctx, "", "")
	assert.Error(t, err)

	assert.Error(t, svc.DeletePrefix(ctx, "", "patients/1/"))
	assert.Error(t, svc.DeletePrefix(ctx, "clinic", "  "))

	_, err = svc.GetObjectURL(ctx, "clinic", "", time.Minute)
	assert.Error(t, err)
}
