// Package objectstore owns the image bucket: provisioning and pre-signed
// upload URLs. Nothing here touches object contents; clients upload straight
// to the bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

type Bucket struct {
	api        *s3.Client
	presigner  *s3.PresignClient
	name       string
	region     string
	presignTTL time.Duration
}

func NewBucket(api *s3.Client, name, region string, presignTTL time.Duration) *Bucket {
	if presignTTL <= 0 {
		presignTTL = time.Hour
	}
	return &Bucket{
		api:        api,
		presigner:  s3.NewPresignClient(api),
		name:       name,
		region:     region,
		presignTTL: presignTTL,
	}
}

// EnsureBucket creates the bucket if it does not already exist. Safe to call
// repeatedly; a bucket we already own is not an error.
func EnsureBucket(ctx context.Context, api *s3.Client, name, region string) error {
	_, err := api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
	if err == nil {
		return nil
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	// us-east-1 rejects an explicit location constraint.
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	_, err = api.CreateBucket(ctx, input)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var taken *types.BucketAlreadyExists
		if errors.As(err, &owned) {
			return nil
		}
		if errors.As(err, &taken) {
			return fmt.Errorf("bucket name %q is taken by another account: %w", name, err)
		}
		return fmt.Errorf("create bucket %q: %w", name, err)
	}
	return nil
}

// IssueUploadURL returns a write-capable pre-signed URL scoped to a freshly
// generated object key, plus the public URL the object will have once the
// client completes the upload.
func (b *Bucket) IssueUploadURL(ctx context.Context, fileName, contentType string) (string, string, error) {
	key := uuid.NewString() + "-" + sanitizeFileName(fileName)

	signed, err := b.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(b.presignTTL))
	if err != nil {
		return "", "", fmt.Errorf("presign upload for %q: %w", key, err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.name, b.region, key)
	return signed.URL, publicURL, nil
}

// ReadyCheck reports whether the bucket is reachable.
func (b *Bucket) ReadyCheck() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := b.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.name)})
		return err
	}
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	return name
}
