// Package storage archives document-extraction results to S3-compatible
// object storage. The archive is best effort: it exists so users can re-open
// past extractions, and a failed upload never fails the extraction itself.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type ArchiveClient struct {
	client *s3.Client
	bucket string
}

// NewArchiveClient creates an archive client for an S3-compatible endpoint
// (DigitalOcean Spaces in production).
func NewArchiveClient(endpoint, region, bucket, accessKeyID, secretAccessKey string) (*ArchiveClient, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if service == s3.ServiceID {
			return aws.Endpoint{
				URL:           endpoint,
				SigningRegion: region,
			}, nil
		}
		return aws.Endpoint{}, fmt.Errorf("unknown endpoint requested")
	})

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(customResolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, secretAccessKey, "",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true // Required for DigitalOcean Spaces
	})

	return &ArchiveClient{client: client, bucket: bucket}, nil
}

// StoreExtraction uploads one extraction result under
// extractions/<yyyy-mm-dd>/<jobID>.txt and returns the object key.
func (a *ArchiveClient) StoreExtraction(ctx context.Context, jobID, text string) (string, error) {
	key := fmt.Sprintf("extractions/%s/%s.txt", time.Now().UTC().Format("2006-01-02"), jobID)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(text),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive extraction %s: %w", jobID, err)
	}
	return key, nil
}
